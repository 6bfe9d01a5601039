package analyzer

import (
	"context"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/palette"
	"go-cvd-inspector/internal/raster"
	"go-cvd-inspector/pkg/models"
)

// paletteAnalyzer implements PaletteAnalyzer on top of a palette extractor
type paletteAnalyzer struct {
	extractor palette.Extractor
}

// NewPaletteAnalyzer creates a palette analyzer using extractor
func NewPaletteAnalyzer(extractor palette.Extractor) PaletteAnalyzer {
	return &paletteAnalyzer{extractor: extractor}
}

// FindContrastIssues extracts k dominant colors and returns every pair whose
// contrast ratio is strictly below threshold.
func (pa *paletteAnalyzer) FindContrastIssues(ctx context.Context, img *raster.RGBImage, k int, threshold float64) ([]models.ContrastIssue, *palette.Palette, error) {
	p, err := pa.extractor.Extract(ctx, img, k)
	if err != nil {
		return nil, nil, err
	}
	issues, _ := pa.EvaluatePalette(p.Colors, threshold)
	return issues, p, nil
}

// EvaluatePalette checks all C(k,2) pairs in ascending index order.
func (pa *paletteAnalyzer) EvaluatePalette(colors []colorutil.RGB, threshold float64) ([]models.ContrastIssue, models.ContrastSummary) {
	return evaluatePalette(colors, threshold)
}

func evaluatePalette(colors []colorutil.RGB, threshold float64) ([]models.ContrastIssue, models.ContrastSummary) {
	issues := []models.ContrastIssue{}
	summary := models.ContrastSummary{Threshold: threshold}

	lum := make([]float64, len(colors))
	for i, c := range colors {
		lum[i] = colorutil.Luminance(c)
	}

	var ratios []float64
	for i := 0; i < len(colors); i++ {
		for j := i + 1; j < len(colors); j++ {
			ratio := colorutil.RatioFromLuminance(lum[i], lum[j])
			ratios = append(ratios, ratio)
			if ratio < threshold {
				issues = append(issues, models.ContrastIssue{
					ColorA: colors[i],
					ColorB: colors[j],
					IndexA: i,
					IndexB: j,
					Ratio:  ratio,
					DeltaE: toColorful(colors[i]).DistanceCIEDE2000(toColorful(colors[j])),
				})
			}
		}
	}

	summary.PairsEvaluated = len(ratios)
	summary.PairsFlagged = len(issues)
	if len(ratios) > 0 {
		summary.MinRatio = floats.Min(ratios)
		summary.MeanRatio = stat.Mean(ratios, nil)
	}
	return issues, summary
}

func toColorful(c colorutil.RGB) colorful.Color {
	f := c.ToRGBF()
	return colorful.Color{R: f.R, G: f.G, B: f.B}
}

func paletteEntries(p *palette.Palette) []models.PaletteEntry {
	total := 0
	for _, n := range p.Counts {
		total += n
	}
	entries := make([]models.PaletteEntry, len(p.Colors))
	for i, c := range p.Colors {
		entries[i] = models.PaletteEntry{
			Color:     c,
			Hex:       toColorful(c).Hex(),
			Luminance: colorutil.Luminance(c),
		}
		if total > 0 {
			entries[i].Share = float64(p.Counts[i]) / float64(total)
		}
	}
	return entries
}
