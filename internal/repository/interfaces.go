package repository

import (
	"context"
	"image"

	"go-cvd-inspector/pkg/models"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage loads and decodes an image from a file path or URL
	FetchImage(ctx context.Context, source string) (image.Image, error)

	// ValidateSource validates if the provided source is acceptable
	ValidateSource(source string) error

	// GetImageMetadata reads dimensions and format without decoding pixels
	GetImageMetadata(ctx context.Context, source string) (*models.ImageMetadata, error)
}
