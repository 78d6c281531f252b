// Package apperrors defines the error taxonomy shared by the storefront core.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("conflict")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrUnavailable       = errors.New("collaborator unavailable")
	ErrIllegalTransition = errors.New("illegal status transition")

	// Customization session contract violations.
	ErrInvalidProduct      = errors.New("invalid product")
	ErrIneligibleFabric    = errors.New("ineligible fabric")
	ErrInvalidOption       = errors.New("invalid style option")
	ErrInvalidMeasurements = errors.New("invalid measurements")
	ErrIncompleteSession   = errors.New("incomplete session")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError enumerates every field that failed validation. It matches
// ErrValidation with errors.Is, and additionally its Kind when set.
type ValidationError struct {
	Kind   error
	Fields []FieldError
}

// NewValidationError builds a ValidationError of the given kind. A nil kind
// means a plain ErrValidation.
func NewValidationError(kind error, fields ...FieldError) *ValidationError {
	return &ValidationError{Kind: kind, Fields: fields}
}

func (e *ValidationError) Error() string {
	prefix := ErrValidation.Error()
	if e.Kind != nil {
		prefix = e.Kind.Error()
	}
	if len(e.Fields) == 0 {
		return prefix
	}

	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Kind != nil && target == e.Kind
}

// HasField reports whether the named field is among the failures.
func (e *ValidationError) HasField(name string) bool {
	for _, f := range e.Fields {
		if f.Field == name {
			return true
		}
	}
	return false
}

// Unavailable marks err as a retryable collaborator failure.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// IsRetryable reports whether the caller may retry the same request.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
