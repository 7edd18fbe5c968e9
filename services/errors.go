package services

import "errors"

// Typed outcomes surfaced to the request layer, which maps them onto
// transport status codes. Storage failures are retryable by the caller;
// everything else is caller-correctable.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)
