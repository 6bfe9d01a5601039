package commands

import (
	"github.com/spf13/cobra"

	"go-cvd-inspector/internal/analyzer"
	"go-cvd-inspector/internal/strategy"
)

// analysisFlags are shared by analyze and palette
type analysisFlags struct {
	k          int
	threshold  float64
	severity   float64
	model      string
	seed       uint64
	attempts   int
	maxSamples int
	mode       string
}

func (f *analysisFlags) register(cmd *cobra.Command, withSimulation bool) {
	cmd.Flags().IntVarP(&f.k, "k", "k", 5, "number of dominant colors")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 3.0, "flag pairs with contrast ratio below this")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "clustering seed (0 = random)")
	cmd.Flags().IntVar(&f.attempts, "attempts", 10, "k-means restarts; the best is kept")
	cmd.Flags().IntVar(&f.maxSamples, "max-samples", 250000, "downsample images with more pixels than this (0 = never)")
	if withSimulation {
		cmd.Flags().Float64Var(&f.severity, "severity", 1.0, "deficiency severity in [0, 1]")
		cmd.Flags().StringVar(&f.model, "model", "machado2009", "simulation model: machado2009, vienot1999")
		cmd.Flags().StringVar(&f.mode, "mode", "full", "analysis mode: full, fast, palette, simulation")
	}
}

// options overlays explicitly set flags on base, then applies the mode
func (f *analysisFlags) options(cmd *cobra.Command, base analyzer.AnalysisOptions, mode string) (analyzer.AnalysisOptions, error) {
	opts := base
	flags := cmd.Flags()
	if flags.Changed("k") {
		opts = opts.WithPaletteSize(f.k)
	}
	if flags.Changed("threshold") {
		opts = opts.WithContrastThreshold(f.threshold)
	}
	if flags.Changed("severity") {
		opts = opts.WithSeverity(f.severity)
	}
	if flags.Changed("model") {
		opts = opts.WithModel(f.model)
	}
	if flags.Changed("seed") {
		opts = opts.WithSeed(f.seed)
	}
	if flags.Changed("attempts") {
		opts.Attempts = f.attempts
	}
	if flags.Changed("max-samples") {
		opts.MaxSamples = f.maxSamples
	}

	s, err := strategy.ForName(mode)
	if err != nil {
		return opts, err
	}
	opts = s.Apply(opts)
	return opts, opts.Validate()
}
