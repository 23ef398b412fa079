package domain

import (
	"errors"
	"fmt"
)

// Common domain errors. Every error returned by a service wraps exactly one
// of these kinds so callers can branch with errors.Is.
var (
	// ErrValidation is returned when input is malformed or a required field is missing
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when a uniqueness constraint would be violated
	ErrConflict = errors.New("conflict")
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidState is returned for an illegal lifecycle transition
	ErrInvalidState = errors.New("invalid state")
	// ErrFormat is returned when an export format is not supported
	ErrFormat = errors.New("unsupported format")
	// ErrUnauthorized is returned when the caller could not be authenticated
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the caller is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
)

// Error carries the failing field or condition alongside its kind.
type Error struct {
	Kind    error
	Field   string
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Field != "" && e.Message != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an *Error of the given kind.
func NewError(kind error, field, message string) *Error {
	return &Error{Kind: kind, Field: field, Message: message}
}

// Validation reports a missing or malformed field.
func Validation(field, message string) error {
	return NewError(ErrValidation, field, message)
}

// Conflict reports a uniqueness violation on field.
func Conflict(field, message string) error {
	return NewError(ErrConflict, field, message)
}

// NotFound reports an unknown identifier.
func NotFound(field, message string) error {
	return NewError(ErrNotFound, field, message)
}

// InvalidState reports an illegal transition.
func InvalidState(message string) error {
	return NewError(ErrInvalidState, "status", message)
}

// Forbidden reports an authorization failure.
func Forbidden(message string) error {
	return NewError(ErrForbidden, "", message)
}

// FieldOf returns the field recorded on err, or "" when err carries none.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
