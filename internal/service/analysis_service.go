package service

import (
	"context"
	"errors"
	"image"
	"time"

	"go-cvd-inspector/internal/analyzer"
	apperrors "go-cvd-inspector/internal/errors"
	"go-cvd-inspector/internal/observer"
	"go-cvd-inspector/internal/repository"
	"go-cvd-inspector/pkg/models"
)

// AnalysisService loads images from their source and runs the colorblind
// friendliness analysis on them
type AnalysisService interface {
	// AnalyzeColorblindFriendliness loads source and analyzes it
	AnalyzeColorblindFriendliness(ctx context.Context, source string, options analyzer.AnalysisOptions) (*models.AnalysisResult, error)

	// AnalyzeImage analyzes an already decoded image, such as an upload
	AnalyzeImage(ctx context.Context, source string, img image.Image, options analyzer.AnalysisOptions) (*models.AnalysisResult, error)

	// LoadImage resolves and decodes source
	LoadImage(ctx context.Context, source string) (image.Image, error)

	// GetImageMetadata reads dimensions and format of source
	GetImageMetadata(ctx context.Context, source string) (*models.ImageMetadata, error)

	// ValidateSource validates the image source
	ValidateSource(source string) error
}

// Timeouts bound each pipeline phase; zero disables a bound
type Timeouts struct {
	ImageFetch time.Duration
	Analysis   time.Duration
}

// analysisService implements AnalysisService
type analysisService struct {
	imageRepo repository.ImageRepository
	analyzer  analyzer.ImageAnalyzer
	events    observer.Subject
	timeouts  Timeouts
}

// NewAnalysisService creates a new analysis service. events may be nil.
func NewAnalysisService(
	imageRepository repository.ImageRepository,
	imageAnalyzer analyzer.ImageAnalyzer,
	events observer.Subject,
	timeouts Timeouts,
) AnalysisService {
	if events == nil {
		events = observer.NewEventPublisher()
	}
	return &analysisService{
		imageRepo: imageRepository,
		analyzer:  imageAnalyzer,
		events:    events,
		timeouts:  timeouts,
	}
}

func (s *analysisService) AnalyzeColorblindFriendliness(ctx context.Context, source string, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	img, err := s.LoadImage(ctx, source)
	if err != nil {
		return nil, err
	}
	return s.AnalyzeImage(ctx, source, img, options)
}

func (s *analysisService) AnalyzeImage(ctx context.Context, source string, img image.Image, options analyzer.AnalysisOptions) (*models.AnalysisResult, error) {
	start := time.Now()
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType: observer.AnalysisStarted,
		Source:    source,
		Metadata: map[string]interface{}{
			"palette_size":     options.PaletteSize,
			"simulation_model": options.SimulationModel,
		},
	})

	analysisCtx, cancel := withTimeout(ctx, s.timeouts.Analysis)
	defer cancel()

	result, err := s.analyzer.Analyze(analysisCtx, img, options)
	if err != nil {
		s.events.NotifyObservers(ctx, observer.AnalysisEvent{
			EventType:      observer.AnalysisFailed,
			Source:         source,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}
	result.Source = source

	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
		IssuesFound:    len(result.ContrastIssues),
		Metadata: map[string]interface{}{
			"width":           result.Width,
			"height":          result.Height,
			"distinct_colors": result.Distinct,
		},
	})
	return result, nil
}

func (s *analysisService) LoadImage(ctx context.Context, source string) (image.Image, error) {
	start := time.Now()
	if err := s.ValidateSource(source); err != nil {
		s.loadFailed(ctx, source, start, err)
		return nil, err
	}

	fetchCtx, cancel := withTimeout(ctx, s.timeouts.ImageFetch)
	defer cancel()

	img, err := s.imageRepo.FetchImage(fetchCtx, source)
	if err != nil {
		wrapped := loadError(err)
		s.loadFailed(ctx, source, start, wrapped)
		return nil, wrapped
	}

	b := img.Bounds()
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageLoaded,
		Source:         source,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"width": b.Dx(), "height": b.Dy()},
	})
	return img, nil
}

func (s *analysisService) GetImageMetadata(ctx context.Context, source string) (*models.ImageMetadata, error) {
	if err := s.ValidateSource(source); err != nil {
		return nil, err
	}
	fetchCtx, cancel := withTimeout(ctx, s.timeouts.ImageFetch)
	defer cancel()

	meta, err := s.imageRepo.GetImageMetadata(fetchCtx, source)
	if err != nil {
		return nil, loadError(err)
	}
	return meta, nil
}

// ValidateSource validates the image source
func (s *analysisService) ValidateSource(source string) error {
	if err := s.imageRepo.ValidateSource(source); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			return apperrors.NewValidationError("invalid image source: "+appErr.Message, err)
		}
		if errors.Is(err, repository.ErrRepositoryUnavailable) {
			return apperrors.NewImageLoadError("image source not supported by this configuration", err)
		}
		return apperrors.NewValidationError("invalid image source", err)
	}
	return nil
}

func (s *analysisService) loadFailed(ctx context.Context, source string, start time.Time, err error) {
	s.events.NotifyObservers(ctx, observer.AnalysisEvent{
		EventType:      observer.ImageLoadFailed,
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
	})
}

// loadError maps fetch failures to the ImageLoadError taxonomy
func loadError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("image fetch timed out", err)
	case errors.Is(err, repository.ErrImageNotFound):
		return apperrors.NewImageLoadError("image not found", err)
	default:
		return apperrors.NewImageLoadError("failed to load image", err)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
