package analyzer

import (
	"errors"
	"math"
	"testing"

	apperrors "go-cvd-inspector/internal/errors"
	"go-cvd-inspector/internal/simulate"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.PaletteSize != 5 {
		t.Errorf("Expected PaletteSize to be 5, got %d", opts.PaletteSize)
	}
	if opts.ContrastThreshold != 3.0 {
		t.Errorf("Expected ContrastThreshold to be 3.0, got %f", opts.ContrastThreshold)
	}
	if opts.DeficiencySeverity != 1.0 {
		t.Errorf("Expected DeficiencySeverity to be 1.0, got %f", opts.DeficiencySeverity)
	}
	if opts.SimulationModel != simulate.ModelMachado2009 {
		t.Errorf("Expected model %s, got %s", simulate.ModelMachado2009, opts.SimulationModel)
	}
	if opts.Attempts != 10 || opts.MaxIterations != 200 || opts.Epsilon != 0.1 {
		t.Errorf("Unexpected clustering defaults: %+v", opts)
	}
	if !opts.UseWorkerPool {
		t.Error("Expected UseWorkerPool to be true by default")
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestPaletteOnlyOptions(t *testing.T) {
	opts := PaletteOnlyOptions()
	if !opts.SkipSimulation {
		t.Error("Expected SkipSimulation to be true")
	}
	if opts.SkipPalette {
		t.Error("Expected SkipPalette to be false")
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithPaletteSize(8).
		WithContrastThreshold(4.5).
		WithSeverity(0.6).
		WithModel(simulate.ModelVienot1999).
		WithSeed(42)

	if opts.PaletteSize != 8 {
		t.Errorf("Expected PaletteSize 8, got %d", opts.PaletteSize)
	}
	if opts.ContrastThreshold != 4.5 {
		t.Errorf("Expected ContrastThreshold 4.5, got %f", opts.ContrastThreshold)
	}
	if opts.DeficiencySeverity != 0.6 {
		t.Errorf("Expected severity 0.6, got %f", opts.DeficiencySeverity)
	}
	if opts.SimulationModel != simulate.ModelVienot1999 {
		t.Errorf("Expected vienot1999, got %s", opts.SimulationModel)
	}
	if opts.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", opts.Seed)
	}

	applied := opts.applied()
	if applied.PaletteSize != 8 || applied.Seed != 42 || applied.SimulationModel != simulate.ModelVienot1999 {
		t.Errorf("Unexpected applied options: %+v", applied)
	}
	if po := opts.paletteOptions(); po.Seed != 42 || po.Attempts != 10 {
		t.Errorf("Unexpected palette options: %+v", po)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts AnalysisOptions
	}{
		{"zero palette size", DefaultOptions().WithPaletteSize(0)},
		{"threshold below 1", DefaultOptions().WithContrastThreshold(0.5)},
		{"threshold above 21", DefaultOptions().WithContrastThreshold(22)},
		{"threshold NaN", DefaultOptions().WithContrastThreshold(math.NaN())},
		{"negative severity", DefaultOptions().WithSeverity(-0.1)},
		{"severity above 1", DefaultOptions().WithSeverity(1.5)},
		{"nothing to do", DefaultOptions().WithoutPalette().WithoutSimulation()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error type, got %v", err)
			}
		})
	}

	err := DefaultOptions().WithSeverity(2).Validate()
	if !errors.Is(err, simulate.ErrInvalidSeverity) {
		t.Errorf("Expected ErrInvalidSeverity cause, got %v", err)
	}

	if err := DefaultOptions().WithModel("custom").Validate(); err != nil {
		t.Errorf("Model names are resolved by the analyzer, got %v", err)
	}

	if err := DefaultOptions().WithoutPalette().WithPaletteSize(0).Validate(); err != nil {
		t.Errorf("Palette size should be ignored when palette is skipped, got %v", err)
	}
}
