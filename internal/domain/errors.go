package domain

import "errors"

// Sentinel errors for the failure kinds callers branch on with errors.Is.
var (
	// ErrNotFound signals a referenced id that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals input rejected before any write was attempted.
	ErrValidation = errors.New("validation failed")

	// ErrConstraint signals a storage-level check failure (bad enum, range,
	// duplicate order index, foreign key).
	ErrConstraint = errors.New("constraint violation")

	// ErrPhotoLimit signals an attempt to exceed MaxPhotosPerMeasurement.
	ErrPhotoLimit = errors.New("photo limit reached")

	// ErrProcessing signals an image that could not be decoded or resized.
	ErrProcessing = errors.New("image processing failed")
)
