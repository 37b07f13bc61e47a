package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound          = errors.New("domain: not found")
	ErrConflict          = errors.New("domain: conflict")
	ErrUnauthenticated   = errors.New("domain: unauthenticated")
	ErrPermissionDenied  = errors.New("domain: permission denied")
	ErrInvalidTransition = errors.New("domain: invalid state transition")
	ErrValidation        = errors.New("domain: validation failed")
)
