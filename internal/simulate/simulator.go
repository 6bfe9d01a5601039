// Package simulate renders how an image appears to viewers with a color
// vision deficiency. Each model is a 3x3 transform applied in linear RGB.
package simulate

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/mat"

	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/internal/workerpool"
)

var ErrInvalidSeverity = errors.New("severity must be within [0, 1]")

const (
	ModelMachado2009 = "machado2009"
	ModelVienot1999  = "vienot1999"
)

// Models returns the registered model names.
func Models() []string {
	return []string{ModelMachado2009, ModelVienot1999}
}

// Simulator transforms an image as seen with a deficiency. Implementations
// are stateless and safe for concurrent use.
type Simulator interface {
	Name() string
	Simulate(img *raster.FloatImage, d Deficiency, severity float64) (*raster.FloatImage, error)
}

// full-severity transforms in linear RGB, row-major
type matrixSet map[Deficiency][9]float64

// Machado, Oliveira & Fernandes (2009), severity 1.0.
var machado2009 = matrixSet{
	Protanomaly: {
		0.152286, 1.052583, -0.204868,
		0.114503, 0.786281, 0.099216,
		-0.003882, -0.048116, 1.051998,
	},
	Deuteranomaly: {
		0.367322, 0.860646, -0.227968,
		0.280085, 0.672501, 0.047413,
		-0.011820, 0.042940, 0.968881,
	},
	Tritanomaly: {
		1.255528, -0.076749, -0.178779,
		-0.078411, 0.930809, 0.147602,
		0.004733, 0.691367, 0.303900,
	},
}

// Viénot, Brettel & Mollon (1999) dichromat projections.
var vienot1999 = matrixSet{
	Protanomaly: {
		0.11238, 0.88762, 0.0,
		0.11238, 0.88762, 0.0,
		0.00401, -0.00401, 1.0,
	},
	Deuteranomaly: {
		0.29275, 0.70725, 0.0,
		0.29275, 0.70725, 0.0,
		-0.02234, 0.02234, 1.0,
	},
	Tritanomaly: {
		1.0, 0.14461, -0.14461,
		0.0, 0.85924, 0.14076,
		0.0, 0.85924, 0.14076,
	},
}

type matrixSimulator struct {
	name     string
	matrices matrixSet
	pool     *workerpool.WorkerPool
}

// NewMachado2009 returns the default simulator. Rows are split across pool
// when it is non-nil.
func NewMachado2009(pool *workerpool.WorkerPool) Simulator {
	return &matrixSimulator{name: ModelMachado2009, matrices: machado2009, pool: pool}
}

// NewVienot1999 returns the dichromat projection simulator.
func NewVienot1999(pool *workerpool.WorkerPool) Simulator {
	return &matrixSimulator{name: ModelVienot1999, matrices: vienot1999, pool: pool}
}

func (s *matrixSimulator) Name() string { return s.name }

// Simulate clips out-of-gamut results to [0, 1], which loses detail in
// heavily saturated regions.
func (s *matrixSimulator) Simulate(img *raster.FloatImage, d Deficiency, severity float64) (*raster.FloatImage, error) {
	if math.IsNaN(severity) || severity < 0 || severity > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSeverity, severity)
	}
	m, err := s.Matrix(d, severity)
	if err != nil {
		return nil, err
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	out := raster.NewFloatImage(img.Width, img.Height)
	g := s.pool.NewGroup()
	for _, strip := range strips(img.Height, s.pool.Workers()) {
		g.Go(func() {
			start, end := 3*strip[0]*img.Width, 3*strip[1]*img.Width
			for i := start; i < end; i += 3 {
				r, gr, b := colorful.Color{R: img.Pix[i], G: img.Pix[i+1], B: img.Pix[i+2]}.LinearRgb()
				lr := clip(m[0]*r + m[1]*gr + m[2]*b)
				lg := clip(m[3]*r + m[4]*gr + m[5]*b)
				lb := clip(m[6]*r + m[7]*gr + m[8]*b)
				c := colorful.LinearRgb(lr, lg, lb)
				out.Pix[i], out.Pix[i+1], out.Pix[i+2] = clip(c.R), clip(c.G), clip(c.B)
			}
		})
	}
	g.Wait()
	return out, nil
}

// Matrix returns the linear-RGB transform for d at severity, blended as
// I + severity*(M - I).
func (s *matrixSimulator) Matrix(d Deficiency, severity float64) ([9]float64, error) {
	full, ok := s.matrices[d]
	if !ok {
		return [9]float64{}, fmt.Errorf("%w: %v", ErrUnknownDeficiency, d)
	}
	identity := mat.NewDiagDense(3, []float64{1, 1, 1})

	var blend mat.Dense
	blend.Sub(mat.NewDense(3, 3, full[:]), identity)
	blend.Scale(severity, &blend)
	blend.Add(identity, &blend)

	var out [9]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[3*i+j] = blend.At(i, j)
		}
	}
	return out, nil
}

// strips splits rows into contiguous [start, end) ranges.
func strips(height, workers int) [][2]int {
	if workers <= 0 {
		workers = 1
	}
	if height < workers {
		workers = max(height, 1)
	}
	rowsPerWorker := (height + workers - 1) / workers // ceil division
	var out [][2]int
	for start := 0; start < height; start += rowsPerWorker {
		out = append(out, [2]int{start, min(start+rowsPerWorker, height)})
	}
	return out
}

func clip(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// New returns the simulator registered under model. An empty name selects
// machado2009.
func New(model string, pool *workerpool.WorkerPool) (Simulator, error) {
	switch model {
	case "", ModelMachado2009:
		return NewMachado2009(pool), nil
	case ModelVienot1999:
		return NewVienot1999(pool), nil
	default:
		return nil, fmt.Errorf("unknown simulation model %q (valid models: %v)", model, Models())
	}
}
