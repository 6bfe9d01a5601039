// Package report renders analysis results as terminal text, JSON and a
// 2x2 comparison image.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/termenv"

	"go-cvd-inspector/internal/colorutil"
	"go-cvd-inspector/internal/simulate"
	"go-cvd-inspector/pkg/models"
)

const noIssuesLine = "No major contrast issues found between dominant colors."

// IssueLines formats the contrast findings: a header followed by one
// numbered line per issue, or a single all-clear line.
func IssueLines(issues []models.ContrastIssue) []string {
	if len(issues) == 0 {
		return []string{noIssuesLine}
	}
	lines := make([]string, 0, len(issues)+1)
	lines = append(lines, fmt.Sprintf("Found %d problematic color combinations:", len(issues)))
	for i, issue := range issues {
		lines = append(lines, fmt.Sprintf("  %d. Colors %s and %s: Contrast ratio = %.2f",
			i+1, issue.ColorA, issue.ColorB, issue.Ratio))
	}
	return lines
}

// TextReporter writes human-readable reports. Swatches are drawn with
// background colors when the profile supports them.
type TextReporter struct {
	out *termenv.Output
}

// NewTextReporter creates a reporter writing to w with the given color
// profile; termenv.Ascii disables swatches.
func NewTextReporter(w io.Writer, profile termenv.Profile) *TextReporter {
	return &TextReporter{out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

// WriteAnalysis prints the full analysis
func (r *TextReporter) WriteAnalysis(result *models.AnalysisResult) error {
	var b strings.Builder

	if result.Source != "" {
		fmt.Fprintf(&b, "Image: %s (%dx%d)\n", result.Source, result.Width, result.Height)
	} else {
		fmt.Fprintf(&b, "Image: %dx%d\n", result.Width, result.Height)
	}
	fmt.Fprintf(&b, "Average luminance: %.3f\n", result.Metrics.AvgLuminance)

	if len(result.Metrics.ColorShift) > 0 {
		b.WriteString("\nSimulated color shift (")
		b.WriteString(result.Options.SimulationModel)
		fmt.Fprintf(&b, ", severity %.2f):\n", result.Options.DeficiencySeverity)
		for _, d := range simulate.AllDeficiencies() {
			if shift, ok := result.Metrics.ColorShift[d]; ok {
				fmt.Fprintf(&b, "  %-28s %.4f\n", d.Title(), shift)
			}
		}
	}

	if len(result.Palette) > 0 {
		b.WriteString("\nDominant colors:\n")
		r.writePalette(&b, result.Palette)
		b.WriteString("\n")
		for _, line := range IssueLines(result.ContrastIssues) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	if len(result.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range result.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

// WritePalette prints the palette with swatches followed by the pairwise
// contrast matrix; cells below threshold are starred.
func (r *TextReporter) WritePalette(result *models.AnalysisResult) error {
	var b strings.Builder
	b.WriteString("Dominant colors:\n")
	r.writePalette(&b, result.Palette)

	colors := make([]colorutil.RGB, len(result.Palette))
	for i, e := range result.Palette {
		colors[i] = e.Color
	}
	b.WriteString("\nContrast ratios:\n")
	writeMatrix(&b, colors, result.Options.ContrastThreshold)
	b.WriteString("\n")
	for _, line := range IssueLines(result.ContrastIssues) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *TextReporter) writePalette(b *strings.Builder, entries []models.PaletteEntry) {
	// most common first
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, c int) bool { return entries[order[a]].Share > entries[order[c]].Share })

	for _, i := range order {
		e := entries[i]
		swatch := r.out.String("    ").Background(r.out.Color(e.Hex)).String()
		if r.out.Profile == termenv.Ascii {
			swatch = ""
		} else {
			swatch += " "
		}
		fmt.Fprintf(b, "  %d. %s%s %-13s %5.1f%%  luminance %.3f\n",
			i+1, swatch, e.Hex, e.Color, e.Share*100, e.Luminance)
	}
}

func writeMatrix(b *strings.Builder, colors []colorutil.RGB, threshold float64) {
	b.WriteString("     ")
	for j := range colors {
		fmt.Fprintf(b, "%7d", j+1)
	}
	b.WriteString("\n")
	for i, ci := range colors {
		fmt.Fprintf(b, "  %2d ", i+1)
		for j, cj := range colors {
			if i == j {
				fmt.Fprintf(b, "%7s", "-")
				continue
			}
			ratio := colorutil.ContrastRatio(ci, cj)
			mark := " "
			if ratio < threshold {
				mark = "*"
			}
			fmt.Fprintf(b, "%6.2f%s", ratio, mark)
		}
		b.WriteString("\n")
	}
}
