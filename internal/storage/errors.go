package storage

import "errors"

// Storage errors shared by all implementations.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when inserting a record at an address
	// that is already occupied.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrVersionConflict is returned when a commit names a record version
	// that is no longer current. The caller must re-read and retry.
	ErrVersionConflict = errors.New("version conflict")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
