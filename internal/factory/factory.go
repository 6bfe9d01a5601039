package factory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go-cvd-inspector/internal/analyzer"
	"go-cvd-inspector/internal/simulate"
	"go-cvd-inspector/internal/storage"
	"go-cvd-inspector/internal/workerpool"
	"go-cvd-inspector/pkg/validation"
)

// StorageType represents different types of storage backends
type StorageType = validation.SourceKind

const (
	// HTTPStorage for HTTP-based image fetching
	HTTPStorage = validation.SourceHTTP
	// AzureStorage for Azure blob storage
	AzureStorage = validation.SourceAzureBlob
	// LocalStorage for local file system
	LocalStorage = validation.SourceLocal
)

// SimulatorConstructor builds a simulator bound to a worker pool
type SimulatorConstructor func(pool *workerpool.WorkerPool) simulate.Simulator

// SimulatorFactory creates deficiency simulators by model name
type SimulatorFactory struct {
	mu           sync.RWMutex
	constructors map[string]SimulatorConstructor
}

// NewSimulatorFactory creates a factory with the built-in models registered
func NewSimulatorFactory() *SimulatorFactory {
	f := &SimulatorFactory{constructors: make(map[string]SimulatorConstructor)}
	f.Register(simulate.ModelMachado2009, simulate.NewMachado2009)
	f.Register(simulate.ModelVienot1999, simulate.NewVienot1999)
	return f
}

// Register adds or replaces a model
func (f *SimulatorFactory) Register(model string, constructor SimulatorConstructor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.constructors[model] = constructor
}

// CreateSimulator returns the simulator for model; an empty name selects machado2009
func (f *SimulatorFactory) CreateSimulator(model string, pool *workerpool.WorkerPool) (simulate.Simulator, error) {
	if model == "" {
		model = simulate.ModelMachado2009
	}
	f.mu.RLock()
	constructor, ok := f.constructors[model]
	f.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported simulation model: %q (available: %v)", model, f.Models())
	}
	return constructor(pool), nil
}

// Models lists registered model names in sorted order
func (f *SimulatorFactory) Models() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	models := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		models = append(models, name)
	}
	sort.Strings(models)
	return models
}

// AnalyzerFactory creates image analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(workers int) (analyzer.ImageAnalyzer, error)
}

// analyzerFactory implements AnalyzerFactory
type analyzerFactory struct {
	simulators *SimulatorFactory
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(simulators *SimulatorFactory) AnalyzerFactory {
	return &analyzerFactory{simulators: simulators}
}

// CreateAnalyzer creates an analyzer with its own worker pool
func (f *analyzerFactory) CreateAnalyzer(workers int) (analyzer.ImageAnalyzer, error) {
	return analyzer.NewImageAnalyzerWithSimulators(workers, f.simulators)
}

// StorageOptions configures the storage backends
type StorageOptions struct {
	FetchTimeout time.Duration
	AzureAccount string
	AzureKey     string
}

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ImageFetcher, error)
	// CreateAll builds every backend that can be configured. Azure is
	// skipped when no account is set.
	CreateAll() (map[StorageType]storage.ImageFetcher, error)
}

// storageFactory implements StorageFactory
type storageFactory struct {
	opts StorageOptions
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(opts StorageOptions) StorageFactory {
	return &storageFactory{opts: opts}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ImageFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(f.opts.FetchTimeout), nil
	case AzureStorage:
		fetcher, err := storage.NewAzureBlobFetcher(f.opts.AzureAccount, f.opts.AzureKey)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case LocalStorage:
		return storage.NewLocalImageFetcher(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

func (f *storageFactory) CreateAll() (map[StorageType]storage.ImageFetcher, error) {
	types := []StorageType{LocalStorage, HTTPStorage}
	if f.opts.AzureAccount != "" {
		types = append(types, AzureStorage)
	}
	fetchers := make(map[StorageType]storage.ImageFetcher, len(types))
	for _, t := range types {
		fetcher, err := f.CreateStorage(t)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s storage: %w", t, err)
		}
		fetchers[t] = fetcher
	}
	return fetchers, nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	SimulatorFactory *SimulatorFactory
	AnalyzerFactory  AnalyzerFactory
	StorageFactory   StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(storageOpts StorageOptions) *ComponentFactory {
	simulators := NewSimulatorFactory()
	return &ComponentFactory{
		SimulatorFactory: simulators,
		AnalyzerFactory:  NewAnalyzerFactory(simulators),
		StorageFactory:   NewStorageFactory(storageOpts),
	}
}
