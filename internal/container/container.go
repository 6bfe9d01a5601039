package container

import (
	"fmt"
	"net/http"

	"go-cvd-inspector/internal/analyzer"
	"go-cvd-inspector/internal/config"
	"go-cvd-inspector/internal/factory"
	"go-cvd-inspector/internal/logger"
	"go-cvd-inspector/internal/observer"
	"go-cvd-inspector/internal/repository"
	"go-cvd-inspector/internal/service"
	"go-cvd-inspector/internal/transport"
	"go-cvd-inspector/pkg/validation"
)

// Mode selects which sources the container accepts
type Mode int

const (
	// ServerMode refuses local file paths
	ServerMode Mode = iota
	// CLIMode accepts local files as well as URLs
	CLIMode
)

// Container holds all application dependencies
type Container struct {
	config          *config.Config
	imageAnalyzer   analyzer.ImageAnalyzer
	imageRepository repository.ImageRepository
	analysisService service.AnalysisService
	metrics         *observer.MetricsObserver
	handler         http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, mode Mode) (*Container, error) {
	components := factory.NewComponentFactory(factory.StorageOptions{
		FetchTimeout: cfg.ImageFetchTimeout,
		AzureAccount: cfg.Azure.Account,
		AzureKey:     cfg.Azure.Key,
	})

	// Build dependency graph
	fetchers, err := components.StorageFactory.CreateAll()
	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}
	validator := validation.NewSourceValidator()
	if mode == ServerMode {
		validator = validation.NewSourceValidatorWithOptions([]string{"http", "https"}, nil, false)
	}
	imageRepository := repository.NewSourceRepository(validator, fetchers)

	imageAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(cfg.Workers)
	if err != nil {
		return nil, err
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	metrics := observer.NewMetricsObserver()
	events.Subscribe(metrics)

	analysisService := service.NewAnalysisService(imageRepository, imageAnalyzer, events, service.Timeouts{
		ImageFetch: cfg.ImageFetchTimeout,
		Analysis:   cfg.AnalysisTimeout,
	})

	c := &Container{
		config:          cfg,
		imageAnalyzer:   imageAnalyzer,
		imageRepository: imageRepository,
		analysisService: analysisService,
		metrics:         metrics,
	}
	if mode == ServerMode {
		c.handler = transport.NewHandler(analysisService, metrics, cfg)
	}
	return c, nil
}

// Handler returns the HTTP handler; nil outside server mode
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Service returns the analysis service
func (c *Container) Service() service.AnalysisService {
	return c.analysisService
}

// Metrics returns the event metrics collector
func (c *Container) Metrics() *observer.MetricsObserver {
	return c.metrics
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the analyzer's worker pool
func (c *Container) Close() error {
	return c.imageAnalyzer.Close()
}
