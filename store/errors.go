package store

import "errors"

var (
	// ErrNotFound is returned when no object exists for a digest.
	ErrNotFound = errors.New("store: object not found")

	// ErrCorrupted is returned when stored content no longer matches its
	// digest.
	ErrCorrupted = errors.New("store: object content does not match digest")
)
