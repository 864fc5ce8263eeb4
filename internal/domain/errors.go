package domain

import (
	"errors"
	"fmt"
)

// Validation and image errors are user correctable and map to HTTP 400.
var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUnsupportedType is returned when the declared MIME type is not an image type.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrOversized is returned when an upload exceeds the size limit.
	ErrOversized = errors.New("file too large")
	// ErrInvalidImage is returned when the payload cannot be decoded as a supported raster image.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidName is returned for asset filenames that are not a single safe path segment.
	ErrInvalidName = errors.New("invalid filename")
)

var (
	// ErrNotFound is the parent of all lookup failures.
	ErrNotFound = errors.New("not found")
	// ErrCardNotFound is returned when no card exists for an id.
	ErrCardNotFound = fmt.Errorf("card %w", ErrNotFound)
	// ErrAssetNotFound is returned when an asset file is missing.
	ErrAssetNotFound = fmt.Errorf("asset %w", ErrNotFound)
)

// ErrStorage marks filesystem or database failures. It maps to HTTP 500.
var ErrStorage = errors.New("storage error")
