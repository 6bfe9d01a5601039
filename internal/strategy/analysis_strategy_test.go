package strategy

import (
	"testing"

	"go-cvd-inspector/internal/analyzer"
)

func TestForName(t *testing.T) {
	tests := []struct {
		name           string
		want           string
		skipPalette    bool
		skipSimulation bool
	}{
		{"", "full", false, false},
		{"FULL", "full", false, false},
		{"palette", "palette", false, true},
		{"simulation", "simulation", true, false},
		{"fast", "fast", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ForName(tt.name)
			if err != nil {
				t.Fatalf("ForName(%q): %v", tt.name, err)
			}
			if s.GetStrategyName() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, s.GetStrategyName())
			}
			opts := s.Apply(analyzer.DefaultOptions().WithoutPalette())
			if tt.name == "simulation" {
				opts = s.Apply(analyzer.DefaultOptions().WithoutSimulation())
			}
			if opts.SkipPalette != tt.skipPalette || opts.SkipSimulation != tt.skipSimulation {
				t.Errorf("Unexpected toggles: palette=%v simulation=%v", opts.SkipPalette, opts.SkipSimulation)
			}
			if err := opts.Validate(); err != nil {
				t.Errorf("Strategy produced invalid options: %v", err)
			}
		})
	}

	if _, err := ForName("ocr"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}

func TestFastAnalysisStrategy(t *testing.T) {
	opts := NewFastAnalysisStrategy().Apply(analyzer.DefaultOptions())
	if opts.MaxSamples != 50000 || opts.Attempts != 3 || opts.MaxIterations != 50 {
		t.Errorf("Unexpected fast options: %+v", opts)
	}

	small := analyzer.DefaultOptions()
	small.MaxSamples = 1000
	small.Attempts = 1
	opts = NewFastAnalysisStrategy().Apply(small)
	if opts.MaxSamples != 1000 || opts.Attempts != 1 {
		t.Errorf("Fast strategy should not raise limits: %+v", opts)
	}
}
