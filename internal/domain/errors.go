package domain

import "fmt"

// FieldError reports an invalid value on a named field of an
// administrator-authored entity. Services translate it into an API
// validation error identifying the offending field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewFieldError constructs a FieldError.
func NewFieldError(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}
