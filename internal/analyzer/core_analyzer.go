package analyzer

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-cvd-inspector/internal/colorutil"
	apperrors "go-cvd-inspector/internal/errors"
	"go-cvd-inspector/internal/palette"
	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/internal/simulate"
	"go-cvd-inspector/internal/workerpool"
	"go-cvd-inspector/pkg/models"
	"go-cvd-inspector/pkg/validation"
)

// coreAnalyzer implements ImageAnalyzer interface and orchestrates all components
type coreAnalyzer struct {
	workerPool        *workerpool.WorkerPool
	metricsCalculator MetricsCalculator
	paletteValidator  *validation.PaletteValidator
	simulators        SimulatorProvider
}

// NewImageAnalyzer creates a new image analyzer with all components.
// workers <= 0 uses one worker per CPU.
func NewImageAnalyzer(workers int) (ImageAnalyzer, error) {
	return NewImageAnalyzerWithSimulators(workers, SimulatorProviderFunc(simulate.New))
}

// NewImageAnalyzerWithSimulators creates an analyzer that resolves
// simulation models through simulators.
func NewImageAnalyzerWithSimulators(workers int, simulators SimulatorProvider) (ImageAnalyzer, error) {
	if simulators == nil {
		return nil, apperrors.NewInternalError("simulator provider is required", nil)
	}
	workerPool := workerpool.NewWorkerPool(workers)
	workerPool.Start()

	return &coreAnalyzer{
		workerPool:        workerPool,
		metricsCalculator: NewMetricsCalculator(),
		paletteValidator:  validation.NewPaletteValidator(),
		simulators:        simulators,
	}, nil
}

// stageResults collects what the concurrent pipeline stages produce
type stageResults struct {
	mu          sync.Mutex
	err         error
	simulations map[simulate.Deficiency]*raster.FloatImage
	palette     *palette.Palette
	issues      []models.ContrastIssue
	summary     models.ContrastSummary
}

func (s *stageResults) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Analyze runs the three deficiency simulations and the palette contrast
// check concurrently. Stages only read the shared original image.
func (ca *coreAnalyzer) Analyze(ctx context.Context, img image.Image, options AnalysisOptions) (*models.AnalysisResult, error) {
	start := time.Now()

	if err := options.Validate(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, apperrors.NewProcessingError("no image to analyze", raster.ErrEmptyImage)
	}
	if err := ctx.Err(); err != nil {
		return nil, contextError(err)
	}

	original := raster.FromImage(img)
	if original.Len() == 0 {
		return nil, apperrors.NewProcessingError("image has no pixels", raster.ErrEmptyImage)
	}

	var pool *workerpool.WorkerPool
	if options.UseWorkerPool {
		pool = ca.workerPool
	}

	results := &stageResults{simulations: make(map[simulate.Deficiency]*raster.FloatImage)}
	var wg sync.WaitGroup

	var normalized *raster.FloatImage
	if !options.SkipSimulation {
		sim, err := ca.simulators.CreateSimulator(options.SimulationModel, pool)
		if err != nil {
			return nil, apperrors.NewValidationError("unsupported simulation model", err)
		}
		normalized = original.ToFloat()

		for _, d := range simulate.AllDeficiencies() {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := sim.Simulate(normalized, d, options.DeficiencySeverity)
				if err != nil {
					results.fail(err)
					return
				}
				results.mu.Lock()
				results.simulations[d] = out
				results.mu.Unlock()
			}()
		}
	}

	if !options.SkipPalette {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pa := NewPaletteAnalyzer(palette.NewKMeansExtractor(options.paletteOptions(), pool))
			issues, p, err := pa.FindContrastIssues(ctx, original, options.PaletteSize, options.ContrastThreshold)
			if err != nil {
				results.fail(err)
				return
			}
			_, summary := pa.EvaluatePalette(p.Colors, options.ContrastThreshold)
			results.mu.Lock()
			results.palette, results.issues, results.summary = p, issues, summary
			results.mu.Unlock()
		}()
	}

	wg.Wait()
	if results.err != nil {
		return nil, stageError(results.err)
	}

	result := &models.AnalysisResult{
		ID:             uuid.NewString(),
		Timestamp:      start,
		Width:          original.Width,
		Height:         original.Height,
		Original:       original,
		ContrastIssues: []models.ContrastIssue{},
		Options:        options.applied(),
	}
	result.Metrics.AvgLuminance = ca.metricsCalculator.CalculateAverageLuminance(original)

	if !options.SkipSimulation {
		result.Simulations = results.simulations
		result.Metrics.ColorShift = make(map[simulate.Deficiency]float64, len(results.simulations))
		for d, sim := range results.simulations {
			result.Metrics.ColorShift[d] = ca.metricsCalculator.CalculateColorShift(normalized, sim)
		}
	}

	validationMetrics := validation.PaletteMetrics{
		Width:        original.Width,
		Height:       original.Height,
		AvgLuminance: result.Metrics.AvgLuminance,
	}
	if results.palette != nil {
		result.Palette = paletteEntries(results.palette)
		result.Distinct = results.palette.Distinct
		result.ContrastIssues = results.issues
		result.Summary = results.summary

		validationMetrics.RequestedColors = options.PaletteSize
		validationMetrics.DistinctColors = results.palette.Distinct
		for _, entry := range result.Palette {
			validationMetrics.Shares = append(validationMetrics.Shares, entry.Share)
		}
	}

	issues := ca.paletteValidator.ValidatePalette(validationMetrics)
	result.Warnings = ca.paletteValidator.ConvertIssuesToMessages(issues)

	result.ProcessingTimeSec = time.Since(start).Seconds()
	return result, nil
}

// Close releases resources
func (ca *coreAnalyzer) Close() error {
	if ca.workerPool != nil {
		ca.workerPool.Close()
	}
	return nil
}

func stageError(err error) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return contextError(err)
	case errors.Is(err, colorutil.ErrInvalidColor):
		return apperrors.NewInvalidColorError("pixel values outside the valid range", err)
	case errors.Is(err, simulate.ErrInvalidSeverity), errors.Is(err, palette.ErrInvalidK):
		return apperrors.NewValidationError("invalid analysis parameters", err)
	case errors.Is(err, palette.ErrEmptyImage), errors.Is(err, raster.ErrEmptyImage):
		return apperrors.NewProcessingError("image has no pixels", err)
	default:
		return apperrors.NewProcessingError("analysis failed", err)
	}
}

func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeoutError("analysis timed out", err)
	}
	return apperrors.NewProcessingError("analysis cancelled", err)
}
