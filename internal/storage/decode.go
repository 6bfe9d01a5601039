package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/kovidgoyal/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-cvd-inspector/pkg/models"
)

// DefaultMaxImageBytes caps how much of a source is read before decoding
const DefaultMaxImageBytes int64 = 50 << 20

// ErrImageTooLarge is returned when a source exceeds the byte limit
var ErrImageTooLarge = errors.New("image exceeds size limit")

// ImageFetcher loads a decoded image from a location
type ImageFetcher interface {
	FetchImage(ctx context.Context, location string) (image.Image, error)
	FetchMetadata(ctx context.Context, location string) (*models.ImageMetadata, error)
}

// DecodeImage decodes an uploaded or piped image with the default size limit
func DecodeImage(r io.Reader) (image.Image, error) {
	return decodeImage(r, DefaultMaxImageBytes)
}

// decodeImage decodes r honouring EXIF orientation, so photos are analysed
// the way they are displayed. The source is buffered first: imaging's
// metadata sniffer needs an io.ReadSeeker.
func decodeImage(r io.Reader, limit int64) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// decodeMetadata reads only the image header
func decodeMetadata(r io.Reader, contentType string, length int64) (*models.ImageMetadata, error) {
	cfg, format, err := image.DecodeConfig(bufio.NewReader(r))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	return &models.ImageMetadata{
		ContentType:   contentType,
		ContentLength: length,
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
	}, nil
}
