package analyzer

import (
	"context"
	"image"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/palette"
	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/internal/simulate"
	"go-cvd-inspector/internal/workerpool"
	"go-cvd-inspector/pkg/models"
)

// ImageAnalyzer defines the main interface for colorblind-friendliness analysis
type ImageAnalyzer interface {
	// Analyze runs every simulation and the palette contrast check on img.
	Analyze(ctx context.Context, img image.Image, options AnalysisOptions) (*models.AnalysisResult, error)

	// Lifecycle management
	Close() error
}

// PaletteAnalyzer extracts dominant colors and flags low-contrast pairs
type PaletteAnalyzer interface {
	FindContrastIssues(ctx context.Context, img *raster.RGBImage, k int, threshold float64) ([]models.ContrastIssue, *palette.Palette, error)
	EvaluatePalette(colors []colorutil.RGB, threshold float64) ([]models.ContrastIssue, models.ContrastSummary)
}

// MetricsCalculator handles whole-image measurements
type MetricsCalculator interface {
	CalculateAverageLuminance(img *raster.RGBImage) float64
	CalculateColorShift(original, simulated *raster.FloatImage) float64
}

// SimulatorProvider builds the simulator for a model name
type SimulatorProvider interface {
	CreateSimulator(model string, pool *workerpool.WorkerPool) (simulate.Simulator, error)
}

// SimulatorProviderFunc adapts a constructor such as simulate.New
type SimulatorProviderFunc func(model string, pool *workerpool.WorkerPool) (simulate.Simulator, error)

func (f SimulatorProviderFunc) CreateSimulator(model string, pool *workerpool.WorkerPool) (simulate.Simulator, error) {
	return f(model, pool)
}
