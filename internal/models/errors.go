package models

import (
	"errors"
	"fmt"
)

// ErrNotFound covers both "no such record" and "not owned by the caller";
// the two are deliberately indistinguishable so ownership never leaks.
var ErrNotFound = errors.New("not found")

// ValidationError reports a user-correctable input problem. The operation
// that raised it performed no writes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
