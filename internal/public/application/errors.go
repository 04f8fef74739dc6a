package application

import "errors"

var (
	// ErrInvalidArgument is returned when a caller supplied value cannot be turned into a request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrStoreNotFound is returned when the store API has no store for the URI.
	ErrStoreNotFound = errors.New("store not found")
)
