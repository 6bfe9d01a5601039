package validation

import "fmt"

// PaletteThresholds defines configurable thresholds for palette validation
type PaletteThresholds struct {
	// Images smaller than this give unreliable palettes
	MinTotalPixels int

	// A single color covering more than this share dominates the image
	MaxDominantShare float64

	// Average luminance bounds; outside them most pairs will be low-contrast
	MinAvgLuminance float64
	MaxAvgLuminance float64
}

// DefaultPaletteThresholds returns the default palette thresholds
func DefaultPaletteThresholds() PaletteThresholds {
	return PaletteThresholds{
		MinTotalPixels:   64,
		MaxDominantShare: 0.98,
		MinAvgLuminance:  0.01,
		MaxAvgLuminance:  0.95,
	}
}

// PaletteValidator flags conditions that make an analysis less trustworthy
type PaletteValidator struct {
	thresholds PaletteThresholds
}

// NewPaletteValidator creates a palette validator with default thresholds
func NewPaletteValidator() *PaletteValidator {
	return &PaletteValidator{
		thresholds: DefaultPaletteThresholds(),
	}
}

// NewPaletteValidatorWithThresholds creates a palette validator with custom
// thresholds. Zero fields take their default value.
func NewPaletteValidatorWithThresholds(thresholds PaletteThresholds) *PaletteValidator {
	return &PaletteValidator{
		thresholds: thresholds.normalized(),
	}
}

func (t PaletteThresholds) normalized() PaletteThresholds {
	d := DefaultPaletteThresholds()
	if t.MinTotalPixels <= 0 {
		t.MinTotalPixels = d.MinTotalPixels
	}
	if t.MaxDominantShare <= 0 {
		t.MaxDominantShare = d.MaxDominantShare
	}
	if t.MinAvgLuminance <= 0 {
		t.MinAvgLuminance = d.MinAvgLuminance
	}
	if t.MaxAvgLuminance <= 0 {
		t.MaxAvgLuminance = d.MaxAvgLuminance
	}
	return t
}

// Issue represents a validation finding
type Issue struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"` // "error", "warning", "info"
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// PaletteMetrics represents what the validator looks at
type PaletteMetrics struct {
	Width           int
	Height          int
	RequestedColors int
	DistinctColors  int
	Shares          []float64
	AvgLuminance    float64
}

// ValidatePalette returns warnings about the image and its extracted palette
func (pv *PaletteValidator) ValidatePalette(metrics PaletteMetrics) []Issue {
	var issues []Issue

	total := metrics.Width * metrics.Height
	if total < pv.thresholds.MinTotalPixels {
		issues = append(issues, Issue{
			Type:        "low_resolution",
			Message:     fmt.Sprintf("Image has only %d pixels; dominant colors may be unreliable", total),
			Severity:    "warning",
			ActualValue: float64(total),
			Threshold:   float64(pv.thresholds.MinTotalPixels),
		})
	}

	if metrics.RequestedColors > 0 && metrics.DistinctColors < metrics.RequestedColors {
		issues = append(issues, Issue{
			Type: "degenerate_palette",
			Message: fmt.Sprintf("Image yields %d distinct dominant colors, fewer than the %d requested; duplicate entries are reported as identical pairs",
				metrics.DistinctColors, metrics.RequestedColors),
			Severity:    "info",
			ActualValue: float64(metrics.DistinctColors),
			Threshold:   float64(metrics.RequestedColors),
		})
	}

	for _, share := range metrics.Shares {
		if share > pv.thresholds.MaxDominantShare {
			issues = append(issues, Issue{
				Type:        "dominant_color",
				Message:     fmt.Sprintf("A single color covers %.1f%% of the image", share*100),
				Severity:    "info",
				ActualValue: share,
				Threshold:   pv.thresholds.MaxDominantShare,
			})
			break
		}
	}

	if metrics.AvgLuminance < pv.thresholds.MinAvgLuminance {
		issues = append(issues, Issue{
			Type:        "too_dark",
			Message:     "Image is almost entirely dark",
			Severity:    "warning",
			ActualValue: metrics.AvgLuminance,
			Threshold:   pv.thresholds.MinAvgLuminance,
		})
	} else if metrics.AvgLuminance > pv.thresholds.MaxAvgLuminance {
		issues = append(issues, Issue{
			Type:        "too_bright",
			Message:     "Image is almost entirely bright",
			Severity:    "warning",
			ActualValue: metrics.AvgLuminance,
			Threshold:   pv.thresholds.MaxAvgLuminance,
		})
	}

	return issues
}

// ConvertIssuesToMessages converts issues to plain messages
func (pv *PaletteValidator) ConvertIssuesToMessages(issues []Issue) []string {
	var messages []string
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

// HasErrors reports whether any issue has error severity
func (pv *PaletteValidator) HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}
