package strategy

import (
	"fmt"
	"sort"
	"strings"

	"go-cvd-inspector/internal/analyzer"
)

// AnalysisStrategy shapes the options a request runs with
type AnalysisStrategy interface {
	Apply(options analyzer.AnalysisOptions) analyzer.AnalysisOptions
	GetStrategyName() string
}

// FullAnalysisStrategy runs every simulation and the palette contrast check
type FullAnalysisStrategy struct{}

// NewFullAnalysisStrategy creates a new full analysis strategy
func NewFullAnalysisStrategy() AnalysisStrategy {
	return &FullAnalysisStrategy{}
}

// Apply enables both pipeline branches
func (s *FullAnalysisStrategy) Apply(options analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	options.SkipPalette = false
	options.SkipSimulation = false
	return options
}

// GetStrategyName returns the strategy name
func (s *FullAnalysisStrategy) GetStrategyName() string {
	return "full"
}

// PaletteAnalysisStrategy only extracts colors and checks their contrast
type PaletteAnalysisStrategy struct{}

// NewPaletteAnalysisStrategy creates a new palette analysis strategy
func NewPaletteAnalysisStrategy() AnalysisStrategy {
	return &PaletteAnalysisStrategy{}
}

// Apply disables the simulations
func (s *PaletteAnalysisStrategy) Apply(options analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	options.SkipPalette = false
	return options.WithoutSimulation()
}

// GetStrategyName returns the strategy name
func (s *PaletteAnalysisStrategy) GetStrategyName() string {
	return "palette"
}

// SimulationStrategy only renders the deficiency simulations
type SimulationStrategy struct{}

// NewSimulationStrategy creates a new simulation strategy
func NewSimulationStrategy() AnalysisStrategy {
	return &SimulationStrategy{}
}

// Apply disables palette extraction
func (s *SimulationStrategy) Apply(options analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	options.SkipSimulation = false
	return options.WithoutPalette()
}

// GetStrategyName returns the strategy name
func (s *SimulationStrategy) GetStrategyName() string {
	return "simulation"
}

// FastAnalysisStrategy trades clustering accuracy for speed on large images
type FastAnalysisStrategy struct{}

// NewFastAnalysisStrategy creates a new fast analysis strategy
func NewFastAnalysisStrategy() AnalysisStrategy {
	return &FastAnalysisStrategy{}
}

// Apply caps samples and attempts
func (s *FastAnalysisStrategy) Apply(options analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	options = NewFullAnalysisStrategy().Apply(options)
	if options.MaxSamples == 0 || options.MaxSamples > 50000 {
		options.MaxSamples = 50000
	}
	options.Attempts = min(options.Attempts, 3)
	options.MaxIterations = min(options.MaxIterations, 50)
	return options
}

// GetStrategyName returns the strategy name
func (s *FastAnalysisStrategy) GetStrategyName() string {
	return "fast"
}

var strategies = map[string]func() AnalysisStrategy{
	"full":       NewFullAnalysisStrategy,
	"palette":    NewPaletteAnalysisStrategy,
	"simulation": NewSimulationStrategy,
	"fast":       NewFastAnalysisStrategy,
}

// ForName looks up a strategy; an empty name selects "full"
func ForName(name string) (AnalysisStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "full"
	}
	ctor, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown analysis mode %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names lists the registered strategies
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
