package sentinel

import "errors"

// Sentinel dependency errors. Stores and clients should return these (optionally
// wrapped) so callers can translate them into domain errors exactly once.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrExpired       = errors.New("expired")
	ErrUnavailable   = errors.New("unavailable")
)
