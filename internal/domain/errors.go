package domain

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("access forbidden: you don't own this resource")
	ErrSignatureMismatch = errors.New("payment signature verification failed")
)

// ValidationError reports malformed or missing caller input. Handlers map it to 400.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// PolicyError reports an operation that is well-formed but disallowed by business
// policy (ineligible upgrade, overlapping pause, late pause cancellation). The reason
// is shown to the caller verbatim.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}
