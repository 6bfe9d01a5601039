package storage

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageFetcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swatch.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 4, 2, color.NRGBA{10, 20, 30, 255}), 0o644))

	fetcher := NewLocalImageFetcher()

	img, err := fetcher.FetchImage(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 2, img.Bounds().Dy())
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})

	meta, err := fetcher.FetchMetadata(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, meta.Width)
	assert.Equal(t, "png", meta.Format)
	assert.Equal(t, "image/png", meta.ContentType)
	assert.Positive(t, meta.ContentLength)
}

func TestLocalImageFetcher_Errors(t *testing.T) {
	dir := t.TempDir()
	fetcher := NewLocalImageFetcher()

	_, err := fetcher.FetchImage(context.Background(), filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = fetcher.FetchImage(context.Background(), garbage)
	assert.ErrorContains(t, err, "failed to decode image")

	_, err = fetcher.FetchMetadata(context.Background(), dir)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fetcher.FetchImage(ctx, garbage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeImage_SizeLimit(t *testing.T) {
	data := encodePNG(t, 64, 64, color.NRGBA{200, 100, 50, 255})

	_, err := decodeImage(bytes.NewReader(data), int64(len(data)/2))
	assert.True(t, errors.Is(err, ErrImageTooLarge), "got %v", err)

	img, err := decodeImage(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestParseBlobURL(t *testing.T) {
	account, containerName, blobName, err := parseBlobURL("https://acct.blob.core.windows.net/charts/2024/q1.png")
	require.NoError(t, err)
	assert.Equal(t, "acct", account)
	assert.Equal(t, "charts", containerName)
	assert.Equal(t, "2024/q1.png", blobName)

	for _, bad := range []string{
		"https://example.com/charts/a.png",
		"https://acct.blob.core.windows.net/charts",
		"https://acct.blob.core.windows.net/",
		"https://.blob.core.windows.net/c/b",
	} {
		_, _, _, err := parseBlobURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewAzureBlobFetcher(t *testing.T) {
	_, err := NewAzureBlobFetcher("", "")
	assert.Error(t, err)

	f, err := NewAzureBlobFetcher("acct", "")
	require.NoError(t, err)
	_, err = f.FetchImage(context.Background(), "https://other.blob.core.windows.net/c/b.png")
	assert.ErrorContains(t, err, "configured for")
}

func TestDecodeImage_NotAnImage(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"text", []byte("this is not an image at all")},
		{"html", []byte("<html>definitely not an image</html>")},
		{"empty", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			assert.NotPanics(t, func() {
				_, err = DecodeImage(bytes.NewReader(tt.input))
			})
			assert.ErrorContains(t, err, "failed to decode image")
		})
	}
}

func TestDecodeImage_SizeLimitBoundary(t *testing.T) {
	data := encodePNG(t, 8, 8, color.NRGBA{1, 2, 3, 255})

	_, err := decodeImage(bytes.NewReader(data), int64(len(data))-1)
	assert.ErrorIs(t, err, ErrImageTooLarge)

	img, err := decodeImage(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
}
