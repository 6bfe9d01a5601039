package models

import (
	"time"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/internal/simulate"
)

// AnalysisResult bundles everything one colorblind-friendliness analysis
// produces. It is built fresh per invocation and never persisted.
type AnalysisResult struct {
	ID                string    `json:"id"`
	Source            string    `json:"source,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	ProcessingTimeSec float64   `json:"processing_time_sec"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`

	Original    *raster.RGBImage                              `json:"-"`
	Simulations map[simulate.Deficiency]*raster.FloatImage `json:"-"`

	Palette        []PaletteEntry  `json:"palette"`
	Distinct       int             `json:"distinct_colors"`
	ContrastIssues []ContrastIssue `json:"contrast_issues"`
	Summary        ContrastSummary `json:"summary"`
	Metrics        ImageMetrics    `json:"metrics"`
	Warnings       []string        `json:"warnings,omitempty"`

	Options AppliedOptions `json:"options"`
}

// PaletteEntry is one dominant color.
type PaletteEntry struct {
	Color     colorutil.RGB `json:"color"`
	Hex       string        `json:"hex"`
	Luminance float64       `json:"luminance"`
	// Fraction of pixels assigned to this color.
	Share float64 `json:"share"`
}

// ContrastIssue is a palette pair whose contrast ratio is below threshold.
// IndexA < IndexB and both index the same palette.
type ContrastIssue struct {
	ColorA colorutil.RGB `json:"color_a"`
	ColorB colorutil.RGB `json:"color_b"`
	IndexA int           `json:"index_a"`
	IndexB int           `json:"index_b"`
	Ratio  float64       `json:"ratio"`
	// CIEDE2000 distance; informational only.
	DeltaE float64 `json:"delta_e"`
}

// ContrastSummary aggregates every evaluated pair.
type ContrastSummary struct {
	PairsEvaluated int     `json:"pairs_evaluated"`
	PairsFlagged   int     `json:"pairs_flagged"`
	MinRatio       float64 `json:"min_ratio"`
	MeanRatio      float64 `json:"mean_ratio"`
	Threshold      float64 `json:"threshold"`
}

// ImageMetrics are whole-image measurements taken alongside the palette.
type ImageMetrics struct {
	// Mean WCAG relative luminance over all pixels.
	AvgLuminance float64 `json:"average_luminance"`
	// Mean Euclidean distance in normalized RGB between the original and
	// each simulation; larger means the deficiency changes the image more.
	ColorShift map[simulate.Deficiency]float64 `json:"color_shift,omitempty"`
}

// AppliedOptions records the parameters an analysis ran with.
type AppliedOptions struct {
	PaletteSize        int     `json:"palette_size"`
	ContrastThreshold  float64 `json:"contrast_threshold"`
	DeficiencySeverity float64 `json:"deficiency_severity"`
	SimulationModel    string  `json:"simulation_model"`
	Seed               uint64  `json:"seed,omitempty"`
}

// ImageMetadata contains metadata about an image
// Moved from repository package for shared usage
type ImageMetadata struct {
	ContentType   string `json:"content_type,omitempty"`
	ContentLength int64  `json:"content_length,omitempty"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Format        string `json:"format"`
}
