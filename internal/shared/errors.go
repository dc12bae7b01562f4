package shared

import "errors"

var (
	// ErrNotFound indicates a referenced resource is absent.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates input that violates a business rule.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a uniqueness violation.
	ErrConflict = errors.New("conflict")
	// ErrState indicates an operation not allowed in the current lifecycle state.
	ErrState = errors.New("invalid state")
)
