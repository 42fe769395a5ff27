package model

import "fmt"

// ValidationError reports input rejected by a repository before it reached
// the store. It is always recoverable: the caller should surface Field and
// Message to the user. Store failures are never wrapped in it, so callers
// can tell bad input from storage trouble with errors.As.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
