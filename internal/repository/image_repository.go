package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"strings"

	"go-cvd-inspector/internal/storage"
	"go-cvd-inspector/pkg/models"
	"go-cvd-inspector/pkg/validation"
)

// SourceRepository implements ImageRepository by routing each source to the
// fetcher registered for its kind
type SourceRepository struct {
	validator *validation.SourceValidator
	fetchers  map[validation.SourceKind]storage.ImageFetcher
}

// NewSourceRepository creates a repository. Kinds without a fetcher fail
// with ErrRepositoryUnavailable.
func NewSourceRepository(validator *validation.SourceValidator, fetchers map[validation.SourceKind]storage.ImageFetcher) ImageRepository {
	return &SourceRepository{
		validator: validator,
		fetchers:  fetchers,
	}
}

// FetchImage retrieves an image from a path or URL
func (r *SourceRepository) FetchImage(ctx context.Context, source string) (image.Image, error) {
	fetcher, location, err := r.resolve(source)
	if err != nil {
		return nil, err
	}
	img, err := fetcher.FetchImage(ctx, location)
	if err != nil {
		return nil, classify(err)
	}
	return img, nil
}

// ValidateSource validates if the provided source is acceptable
func (r *SourceRepository) ValidateSource(source string) error {
	_, _, err := r.resolve(source)
	return err
}

// GetImageMetadata retrieves dimensions and format of an image
func (r *SourceRepository) GetImageMetadata(ctx context.Context, source string) (*models.ImageMetadata, error) {
	fetcher, location, err := r.resolve(source)
	if err != nil {
		return nil, err
	}
	meta, err := fetcher.FetchMetadata(ctx, location)
	if err != nil {
		return nil, classify(err)
	}
	return meta, nil
}

func (r *SourceRepository) resolve(source string) (storage.ImageFetcher, string, error) {
	kind, err := r.validator.Classify(source)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	fetcher, ok := r.fetchers[kind]
	if !ok || fetcher == nil {
		return nil, "", fmt.Errorf("%w: no %s fetcher configured", ErrRepositoryUnavailable, kind)
	}
	location := strings.TrimSpace(source)
	if kind == validation.SourceLocal {
		location = validation.LocalPath(source)
	}
	return fetcher, location, nil
}

func classify(err error) error {
	if errors.Is(err, os.ErrNotExist) || strings.Contains(err.Error(), "status code 404") {
		return fmt.Errorf("%w: %w", ErrImageNotFound, err)
	}
	return err
}
