package analyzer

import (
	"math"
	"runtime"
	"sync"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/raster"
)

// metricsCalculator implements MetricsCalculator with row-strip parallelism
type metricsCalculator struct{}

// NewMetricsCalculator creates a new metrics calculator
func NewMetricsCalculator() MetricsCalculator {
	return &metricsCalculator{}
}

// CalculateAverageLuminance returns the mean relative luminance of img
func (mc *metricsCalculator) CalculateAverageLuminance(img *raster.RGBImage) float64 {
	if img.Len() == 0 {
		return 0
	}
	// 8-bit input has only 256 distinct linearized values per channel
	var lut [256]float64
	for v := range lut {
		lut[v] = colorutil.LinearChannel(uint8(v))
	}

	total := sumStrips(img.Height, func(startY, endY int) float64 {
		var sum float64
		for n := startY * img.Width; n < endY*img.Width; n++ {
			i := 3 * n
			sum += 0.2126*lut[img.Pix[i]] + 0.7152*lut[img.Pix[i+1]] + 0.0722*lut[img.Pix[i+2]]
		}
		return sum
	})
	return total / float64(img.Len())
}

// CalculateColorShift returns the mean per-pixel Euclidean distance between
// two same-sized images in normalized RGB. Mismatched sizes yield NaN.
func (mc *metricsCalculator) CalculateColorShift(original, simulated *raster.FloatImage) float64 {
	if original.Width != simulated.Width || original.Height != simulated.Height {
		return math.NaN()
	}
	if original.Len() == 0 {
		return 0
	}
	total := sumStrips(original.Height, func(startY, endY int) float64 {
		var sum float64
		for i := 3 * startY * original.Width; i < 3*endY*original.Width; i += 3 {
			dr := original.Pix[i] - simulated.Pix[i]
			dg := original.Pix[i+1] - simulated.Pix[i+1]
			db := original.Pix[i+2] - simulated.Pix[i+2]
			sum += math.Sqrt(dr*dr + dg*dg + db*db)
		}
		return sum
	})
	return total / float64(original.Len())
}

// sumStrips splits rows across CPUs and adds up fn over each strip.
func sumStrips(height int, fn func(startY, endY int) float64) float64 {
	numWorkers := runtime.NumCPU()
	if height < numWorkers {
		numWorkers = height
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	rowsPerWorker := (height + numWorkers - 1) / numWorkers // ceil division

	results := make(chan float64, numWorkers)
	var wg sync.WaitGroup

	// Process image in horizontal strips for better cache locality
	for startY := 0; startY < height; startY += rowsPerWorker {
		endY := min(startY+rowsPerWorker, height)
		wg.Add(1)
		go func(startY, endY int) {
			defer wg.Done()
			results <- fn(startY, endY)
		}(startY, endY)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var total float64
	for r := range results {
		total += r
	}
	return total
}
