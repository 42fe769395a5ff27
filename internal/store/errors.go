package store

import "errors"

var (
	// ErrNotFound is returned by id-addressed reads and writes when no
	// row matches.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned by every operation after Close until a new
	// store is opened.
	ErrClosed = errors.New("store is closed")

	// ErrInvalidRating is returned by SetRating for values outside the
	// 0-10 scale.
	ErrInvalidRating = errors.New("rating must be between 0 and 10")
)
