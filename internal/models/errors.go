package models

import "github.com/pkg/errors"

// Domain error kinds. Services wrap these with context via
// errors.Wrap; the API layer maps them to HTTP statuses with
// errors.Is.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
)
