package commands

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cvd-inspector/internal/analyzer"
)

// writeSplitPNG writes a 40x20 image: red on the left, green on the right
func writeSplitPNG(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 20 {
				c = color.NRGBA{G: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(t.TempDir(), "split.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CVD_CONFIG", "")
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzeText(t *testing.T) {
	src := writeSplitPNG(t)

	out, err := run(t, "analyze", src, "--k", "2", "--seed", "1", "--color", "never")
	require.NoError(t, err)

	assert.Contains(t, out, "Image: "+src+" (40x20)")
	assert.Contains(t, out, "Deuteranomaly")
	assert.Contains(t, out, "Found 1 problematic color combinations:")
	assert.Contains(t, out, "Contrast ratio = 2.91")
	assert.Contains(t, out, "#ff0000")
	assert.Contains(t, out, "#00ff00")
}

func TestAnalyzeJSON(t *testing.T) {
	src := writeSplitPNG(t)

	out, err := run(t, "analyze", src, "--k", "2", "--seed", "1", "--json")
	require.NoError(t, err)

	var resp struct {
		Width          int `json:"width"`
		Height         int `json:"height"`
		ContrastIssues []struct {
			Ratio float64 `json:"ratio"`
		} `json:"contrast_issues"`
		Simulations map[string]string `json:"simulations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 40, resp.Width)
	assert.Equal(t, 20, resp.Height)
	require.Len(t, resp.ContrastIssues, 1)
	assert.InDelta(t, 2.91, resp.ContrastIssues[0].Ratio, 0.01)
	assert.Empty(t, resp.Simulations)
}

func TestAnalyzeWritesComposite(t *testing.T) {
	src := writeSplitPNG(t)
	dst := filepath.Join(t.TempDir(), "grid.png")

	out, err := run(t, "analyze", src, "--k", "2", "--seed", "1", "--color", "never",
		"--output", dst, "--panel-width", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "Comparison image written to "+dst)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 200)
	assert.Greater(t, cfg.Height, 100)
}

func TestAnalyzeOutputNeedsSimulations(t *testing.T) {
	src := writeSplitPNG(t)
	dst := filepath.Join(t.TempDir(), "grid.png")

	_, err := run(t, "analyze", src, "--k", "2", "--mode", "palette", "--output", dst)
	require.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestAnalyzeFailOnIssues(t *testing.T) {
	src := writeSplitPNG(t)

	_, err := run(t, "analyze", src, "--k", "2", "--seed", "1", "--fail-on-issues")
	assert.ErrorIs(t, err, ErrIssuesFound)

	_, err = run(t, "analyze", src, "--k", "2", "--seed", "1", "--threshold", "2", "--fail-on-issues")
	assert.NoError(t, err)
}

func TestAnalyzeErrors(t *testing.T) {
	src := writeSplitPNG(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.png")}},
		{"no source", []string{"analyze"}},
		{"bad mode", []string{"analyze", src, "--mode", "turbo"}},
		{"bad severity", []string{"analyze", src, "--severity", "1.5"}},
		{"bad model", []string{"analyze", src, "--model", "brettel"}},
		{"bad k", []string{"analyze", src, "--k", "0"}},
		{"bad color", []string{"analyze", src, "--k", "2", "--color", "sometimes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestPalette(t *testing.T) {
	src := writeSplitPNG(t)

	out, err := run(t, "palette", src, "--k", "2", "--seed", "1", "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "Dominant colors:")
	assert.Contains(t, out, "Contrast ratios:")
	assert.Contains(t, out, "Contrast ratio = 2.91")
	assert.NotContains(t, out, "Deuteranomaly")

	out, err = run(t, "palette", src, "--k", "2", "--seed", "1", "--threshold", "2", "--color", "never")
	require.NoError(t, err)
	assert.Contains(t, out, "No major contrast issues found between dominant colors.")
}

func TestSimulate(t *testing.T) {
	src := writeSplitPNG(t)
	dst := filepath.Join(t.TempDir(), "tritan.png")

	out, err := run(t, "simulate", src, "--type", "tritanomaly", "--out", dst)
	require.NoError(t, err)
	assert.Contains(t, out, "written to "+dst)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
}

func TestSimulateErrors(t *testing.T) {
	src := writeSplitPNG(t)
	dst := filepath.Join(t.TempDir(), "x.png")

	_, err := run(t, "simulate", src)
	assert.Error(t, err, "--out is required")

	_, err = run(t, "simulate", src, "--type", "achromatopsia", "--out", dst)
	assert.Error(t, err)
	assert.NoFileExists(t, dst)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "cvdinspect ")
}

func TestFlagsOverlayOnlyChangedValues(t *testing.T) {
	var f analysisFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd, true)
	require.NoError(t, cmd.ParseFlags([]string{"--threshold", "4.5"}))

	base := analyzer.DefaultOptions().WithPaletteSize(7)
	opts, err := f.options(cmd, base, f.mode)
	require.NoError(t, err)

	assert.Equal(t, 7, opts.PaletteSize, "unset --k keeps the configured value")
	assert.Equal(t, 4.5, opts.ContrastThreshold)
	assert.Equal(t, base.SimulationModel, opts.SimulationModel)
	assert.False(t, opts.SkipPalette)
	assert.False(t, opts.SkipSimulation)
}

func TestFlagsFastMode(t *testing.T) {
	var f analysisFlags
	cmd := &cobra.Command{Use: "x"}
	f.register(cmd, true)
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "fast"}))

	opts, err := f.options(cmd, analyzer.DefaultOptions(), f.mode)
	require.NoError(t, err)
	assert.LessOrEqual(t, opts.Attempts, 3)
	assert.LessOrEqual(t, opts.MaxSamples, 50000)
}
