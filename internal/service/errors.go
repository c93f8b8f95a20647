package service

import "errors"

var (
	// ErrInvalidInput reports a request the handler should answer
	// with a client error (empty cart, malformed fields).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound reports a lookup for an entity that does not exist.
	ErrNotFound = errors.New("not found")
)
