package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested key does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrEmptyKey is returned when a caller addresses the store with a blank key.
	ErrEmptyKey = errors.New("persistence: empty key")
)
