package core

import (
	"errors"
	"fmt"
)

// ValidationError reports a caller-supplied parameter that is malformed or
// out of range. It is raised before any request is sent and is never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid parameter: " + e.Message
	}
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
