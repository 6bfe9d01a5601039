package repository

import "errors"

var (
	// ErrInvalidSource indicates a source the validator rejected
	ErrInvalidSource = errors.New("invalid image source")

	// ErrImageNotFound indicates the image was not found
	ErrImageNotFound = errors.New("image not found")

	// ErrRepositoryUnavailable indicates no fetcher is configured for the source kind
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
