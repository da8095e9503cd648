package repositories

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not resolve.
	ErrNotFound = errors.New("not found")
	// ErrSelfFollow is returned when a user tries to follow themselves.
	ErrSelfFollow = errors.New("cannot follow yourself")
)
