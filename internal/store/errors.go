package store

import "errors"

// Sentinel errors returned by store operations. Callers check them
// with errors.Is; everything else is a persistence failure.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
)
