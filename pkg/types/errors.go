package types

import (
	"errors"
	"fmt"
)

// Record operation errors.
var (
	ErrValidation = errors.New("invalid field value")
	ErrNotFound   = errors.New("record not found")
	ErrFormat     = errors.New("malformed persisted value")
)

// Persistence errors. ErrStoreUnavailable is reported as a warning when a
// collection file is missing or unreadable and an empty collection is used.
var (
	ErrStoreUnavailable = errors.New("store file missing or unreadable")
	ErrSkippedRecord    = errors.New("persisted record skipped")
)

// ErrInvalidPolicy is returned when a delete policy name is not recognized.
var ErrInvalidPolicy = errors.New("invalid delete policy")

// ErrClosed is returned by Assistant.Save once the assistant is closed.
var ErrClosed = errors.New("assistant is closed")

// ValidationError reports a field value that violates its format contract.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, value, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

// NotFoundError reports a lookup by id on a record that does not exist.
type NotFoundError struct {
	Kind string
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) hold for every NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// FormatError reports a persisted field that parsed as JSON but holds a
// malformed value. Loaders recover from it by substituting a default.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
