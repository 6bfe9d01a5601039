package palette

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/kovidgoyal/imaging"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/internal/workerpool"
)

var (
	ErrEmptyImage = errors.New("cannot extract colors from an empty image")
	ErrInvalidK   = errors.New("palette size must be at least 1")
)

// Palette is the set of representative colors found in one image.
type Palette struct {
	// Exactly k centers, rounded to 8-bit.
	Colors []colorutil.RGB `json:"colors"`
	// Index into Colors for every pixel of the original image, row-major.
	Labels []int `json:"-"`
	// Pixels assigned to each color.
	Counts []int `json:"counts"`
	// Total within-cluster squared distance of the winning attempt.
	Inertia float64 `json:"inertia"`
	// Number of distinct colors among Colors; below k for low-diversity images.
	Distinct int `json:"distinct"`
}

// Extractor finds the dominant colors of an image.
type Extractor interface {
	Extract(ctx context.Context, img *raster.RGBImage, k int) (*Palette, error)
}

type kmeansExtractor struct {
	opts Options
	pool *workerpool.WorkerPool

	mu  sync.Mutex
	rng *rand.Rand
}

// NewKMeansExtractor returns a best-of-N k-means extractor. Attempts run on
// pool when it is non-nil.
func NewKMeansExtractor(opts Options, pool *workerpool.WorkerPool) Extractor {
	opts = opts.normalized()
	seed := opts.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &kmeansExtractor{
		opts: opts,
		pool: pool,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// weighted point: one distinct color and how many sampled pixels carry it
type point struct {
	v [3]float64
	w float64
}

type attemptResult struct {
	centers [][3]float64
	inertia float64
	err     error
}

func (e *kmeansExtractor) Extract(ctx context.Context, img *raster.RGBImage, k int) (*Palette, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if img == nil || img.Len() == 0 {
		return nil, ErrEmptyImage
	}

	points := histogram(e.sample(img))

	seeds := make([]uint64, e.opts.Attempts)
	e.mu.Lock()
	for i := range seeds {
		seeds[i] = e.rng.Uint64()
	}
	e.mu.Unlock()

	results := make([]attemptResult, len(seeds))
	g := e.pool.NewGroup()
	for i, seed := range seeds {
		g.Go(func() {
			rng := rand.New(rand.NewPCG(seed, uint64(i)))
			results[i] = e.attempt(ctx, points, k, rng)
		})
	}
	g.Wait()

	best := -1
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		if best < 0 || r.inertia < results[best].inertia {
			best = i
		}
	}

	return label(img, results[best].centers, results[best].inertia), nil
}

// sample downscales large images with nearest-neighbour resampling, which
// keeps the original colors instead of blending new ones.
func (e *kmeansExtractor) sample(img *raster.RGBImage) *raster.RGBImage {
	n := img.Len()
	if e.opts.MaxSamples <= 0 || n <= e.opts.MaxSamples {
		return img
	}
	scale := math.Sqrt(float64(e.opts.MaxSamples) / float64(n))
	w := max(1, int(float64(img.Width)*scale))
	h := max(1, int(float64(img.Height)*scale))
	return raster.FromImage(imaging.Resize(img.AsImage(), w, h, imaging.NearestNeighbor))
}

func histogram(img *raster.RGBImage) []point {
	counts := make(map[uint32]int)
	for n := 0; n < img.Len(); n++ {
		c := img.Pixel(n)
		counts[packRGB(c)]++
	}
	keys := make([]uint32, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	// sorted so a fixed seed always picks the same initial centers
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	points := make([]point, len(keys))
	for i, key := range keys {
		points[i] = point{
			v: [3]float64{float64(key >> 16 & 0xff), float64(key >> 8 & 0xff), float64(key & 0xff)},
			w: float64(counts[key]),
		}
	}
	return points
}

func (e *kmeansExtractor) attempt(ctx context.Context, points []point, k int, rng *rand.Rand) attemptResult {
	centers := initialCenters(points, k, rng)

	sums := make([][3]float64, k)
	weights := make([]float64, k)
	for iter := 0; iter < e.opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return attemptResult{err: err}
		}
		clear(sums)
		clear(weights)
		for _, p := range points {
			j, _ := nearest(p.v, centers)
			for c := 0; c < 3; c++ {
				sums[j][c] += p.v[c] * p.w
			}
			weights[j] += p.w
		}

		maxShift := 0.0
		for j := range centers {
			// empty clusters keep their previous center
			if weights[j] == 0 {
				continue
			}
			next := [3]float64{sums[j][0] / weights[j], sums[j][1] / weights[j], sums[j][2] / weights[j]}
			maxShift = math.Max(maxShift, math.Sqrt(sqDist(next, centers[j])))
			centers[j] = next
		}
		if maxShift < e.opts.Epsilon {
			break
		}
	}

	inertia := 0.0
	for _, p := range points {
		_, d := nearest(p.v, centers)
		inertia += d * p.w
	}
	return attemptResult{centers: centers, inertia: inertia}
}

// initialCenters picks k distinct colors at random. With fewer than k
// distinct colors, every color is used and the rest cycle through them.
func initialCenters(points []point, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, k)
	if len(points) <= k {
		for j := range centers {
			centers[j] = points[j%len(points)].v
		}
		return centers
	}
	// partial Fisher-Yates over indices
	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	for j := 0; j < k; j++ {
		r := j + rng.IntN(len(idx)-j)
		idx[j], idx[r] = idx[r], idx[j]
		centers[j] = points[idx[j]].v
	}
	return centers
}

// nearest returns the closest center; ties go to the lowest index.
func nearest(v [3]float64, centers [][3]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for j, c := range centers {
		if d := sqDist(v, c); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best, bestDist
}

func sqDist(a, b [3]float64) float64 {
	dr, dg, db := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return dr*dr + dg*dg + db*db
}

func label(img *raster.RGBImage, centers [][3]float64, inertia float64) *Palette {
	k := len(centers)
	p := &Palette{
		Colors:  make([]colorutil.RGB, k),
		Labels:  make([]int, img.Len()),
		Counts:  make([]int, k),
		Inertia: inertia,
	}
	rounded := make([][3]float64, k)
	distinct := make(map[colorutil.RGB]struct{}, k)
	for j, c := range centers {
		p.Colors[j] = colorutil.RGB{R: to8(c[0]), G: to8(c[1]), B: to8(c[2])}
		rounded[j] = [3]float64{float64(p.Colors[j].R), float64(p.Colors[j].G), float64(p.Colors[j].B)}
		distinct[p.Colors[j]] = struct{}{}
	}
	p.Distinct = len(distinct)

	cache := make(map[uint32]int)
	for n := 0; n < img.Len(); n++ {
		c := img.Pixel(n)
		key := packRGB(c)
		j, ok := cache[key]
		if !ok {
			j, _ = nearest([3]float64{float64(c.R), float64(c.G), float64(c.B)}, rounded)
			cache[key] = j
		}
		p.Labels[n] = j
		p.Counts[j]++
	}
	return p
}

func packRGB(c colorutil.RGB) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func to8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
