package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSectionType = errors.New("unknown section type")
	ErrMalformedTemplate  = errors.New("malformed template")
	ErrInvalidPageConfig  = errors.New("invalid page configuration")
	ErrInvalidPageData    = errors.New("invalid page data")
	ErrInvalidTemplate    = errors.New("invalid template")
	ErrNotFound           = errors.New("not found")

	ErrNoPage            = errors.New("no page loaded")
	ErrSessionNotFound   = errors.New("builder session not found")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrDuplicateSection  = errors.New("section type already registered")
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ValidationError reports the first structural problem found in external input.
type ValidationError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", e.Kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// NewValidationError builds a ValidationError of the given kind.
func NewValidationError(kind error, field, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: reason}
}
