package analyzer

import (
	"fmt"
	"math"

	"go-cvd-inspector/internal/colorutil"
	apperrors "go-cvd-inspector/internal/errors"
	"go-cvd-inspector/internal/palette"
	"go-cvd-inspector/internal/simulate"
	"go-cvd-inspector/pkg/models"
)

// AnalysisOptions provides flexible configuration for image analysis
type AnalysisOptions struct {
	// Palette analysis
	PaletteSize       int
	ContrastThreshold float64

	// Simulation
	DeficiencySeverity float64
	SimulationModel    string

	// Clustering
	Seed          uint64 // 0 = random
	Attempts      int
	MaxIterations int
	Epsilon       float64
	MaxSamples    int

	// Feature toggles
	SkipSimulation bool
	SkipPalette    bool

	// Performance options
	UseWorkerPool bool
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	p := palette.DefaultOptions()
	return AnalysisOptions{
		PaletteSize:        5,
		ContrastThreshold:  colorutil.DefaultContrastThreshold,
		DeficiencySeverity: 1.0,
		SimulationModel:    simulate.ModelMachado2009,
		Attempts:           p.Attempts,
		MaxIterations:      p.MaxIterations,
		Epsilon:            p.Epsilon,
		MaxSamples:         p.MaxSamples,
		UseWorkerPool:      true,
	}
}

// PaletteOnlyOptions returns options that skip the deficiency simulations
func PaletteOnlyOptions() AnalysisOptions {
	return DefaultOptions().WithoutSimulation()
}

// WithPaletteSize sets the number of dominant colors (k)
func (opts AnalysisOptions) WithPaletteSize(k int) AnalysisOptions {
	opts.PaletteSize = k
	return opts
}

// WithContrastThreshold sets the ratio below which a pair is flagged
func (opts AnalysisOptions) WithContrastThreshold(threshold float64) AnalysisOptions {
	opts.ContrastThreshold = threshold
	return opts
}

// WithSeverity sets the simulated deficiency severity
func (opts AnalysisOptions) WithSeverity(severity float64) AnalysisOptions {
	opts.DeficiencySeverity = severity
	return opts
}

// WithModel selects the simulation model
func (opts AnalysisOptions) WithModel(model string) AnalysisOptions {
	opts.SimulationModel = model
	return opts
}

// WithSeed makes clustering deterministic
func (opts AnalysisOptions) WithSeed(seed uint64) AnalysisOptions {
	opts.Seed = seed
	return opts
}

// WithoutSimulation disables the deficiency simulations
func (opts AnalysisOptions) WithoutSimulation() AnalysisOptions {
	opts.SkipSimulation = true
	return opts
}

// WithoutPalette disables palette extraction and contrast checks
func (opts AnalysisOptions) WithoutPalette() AnalysisOptions {
	opts.SkipPalette = true
	return opts
}

// Validate rejects parameters the pipeline cannot run with. Model names are
// resolved later by the analyzer.
func (opts AnalysisOptions) Validate() error {
	switch {
	case opts.SkipPalette && opts.SkipSimulation:
		return apperrors.NewValidationError("nothing to analyze: palette and simulation both disabled", nil)
	case opts.PaletteSize < 1 && !opts.SkipPalette:
		return apperrors.NewValidationError(fmt.Sprintf("palette size must be >= 1 (got %d)", opts.PaletteSize), nil)
	case math.IsNaN(opts.ContrastThreshold) || opts.ContrastThreshold < 1 || opts.ContrastThreshold > 21:
		return apperrors.NewValidationError(fmt.Sprintf("contrast threshold must be within [1, 21] (got %v)", opts.ContrastThreshold), nil)
	case math.IsNaN(opts.DeficiencySeverity) || opts.DeficiencySeverity < 0 || opts.DeficiencySeverity > 1:
		return apperrors.NewValidationError(fmt.Sprintf("deficiency severity must be within [0, 1] (got %v)", opts.DeficiencySeverity), simulate.ErrInvalidSeverity)
	}
	// the model name is checked by the analyzer's simulator provider, which
	// knows about registered models
	return nil
}

func (opts AnalysisOptions) paletteOptions() palette.Options {
	return palette.Options{
		Attempts:      opts.Attempts,
		MaxIterations: opts.MaxIterations,
		Epsilon:       opts.Epsilon,
		MaxSamples:    opts.MaxSamples,
		Seed:          opts.Seed,
	}
}

func (opts AnalysisOptions) applied() models.AppliedOptions {
	model := opts.SimulationModel
	if model == "" {
		model = simulate.ModelMachado2009
	}
	return models.AppliedOptions{
		PaletteSize:        opts.PaletteSize,
		ContrastThreshold:  opts.ContrastThreshold,
		DeficiencySeverity: opts.DeficiencySeverity,
		SimulationModel:    model,
		Seed:               opts.Seed,
	}
}
