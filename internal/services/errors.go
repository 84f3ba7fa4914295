package services

import (
	"errors"
	"fmt"
)

// Failure taxonomy shared by all services. Handlers translate these into
// the structured JSON result; nothing here is fatal to the process.
var (
	ErrUnauthenticated = errors.New("login required")
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("already exists")
	ErrForbidden       = errors.New("forbidden")
	// ErrTransient marks backend-level storage failures. Safe to retry at
	// the caller's discretion.
	ErrTransient = errors.New("temporary storage error")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// transient wraps an unexpected storage error so handlers can map it to a
// retryable failure without leaking driver details.
func transient(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}
