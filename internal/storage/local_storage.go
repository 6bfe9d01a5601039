package storage

import (
	"context"
	"fmt"
	"image"
	"mime"
	"os"
	"path/filepath"

	"go-cvd-inspector/pkg/models"
)

// LocalImageFetcher reads images from the filesystem
type LocalImageFetcher struct {
	maxBytes int64
}

// NewLocalImageFetcher creates a filesystem fetcher
func NewLocalImageFetcher() ImageFetcher {
	return &LocalImageFetcher{maxBytes: DefaultMaxImageBytes}
}

func (l *LocalImageFetcher) FetchImage(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return decodeImage(f, l.maxBytes)
}

func (l *LocalImageFetcher) FetchMetadata(ctx context.Context, path string) (*models.ImageMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return decodeMetadata(f, mime.TypeByExtension(filepath.Ext(path)), info.Size())
}
