package container

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cvd-inspector/internal/analyzer"
	"go-cvd-inspector/internal/config"
	apperrors "go-cvd-inspector/internal/errors"
)

func writeCheckerboard(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.NRGBA{0, 0, 0, 255})
			} else {
				img.Set(x, y, color.NRGBA{255, 255, 255, 255})
			}
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestNewContainer_CLIMode(t *testing.T) {
	c, err := NewContainer(config.Default(), CLIMode)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.Handler())

	path := filepath.Join(t.TempDir(), "board.png")
	writeCheckerboard(t, path)

	result, err := c.Service().AnalyzeColorblindFriendliness(context.Background(), path, analyzer.DefaultOptions().WithPaletteSize(2).WithSeed(1))
	require.NoError(t, err)
	assert.Empty(t, result.ContrastIssues)
	assert.Equal(t, int64(1), c.Metrics().GetMetrics().SuccessfulAnalyses)
}

func TestNewContainer_ServerMode(t *testing.T) {
	c, err := NewContainer(config.Default(), ServerMode)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NotNil(t, c.Handler())
	err = c.Service().ValidateSource("/etc/passwd")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "got %v", err)
}
