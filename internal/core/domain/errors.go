package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown source type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLLMUnavailable indicates the LLM service could not be created or reached.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Session Errors.

	// ErrValidation is the category every ValidationError unwraps to.
	// Validation failures are recoverable: the session stays open.
	ErrValidation = errors.New("validation failed")

	// ErrSourceUnavailable indicates a candidate source could not be read.
	// The source is not admitted and the collection is unchanged.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrProviderNotConfigured indicates the selected analysis provider
	// has no usable credentials or is not a known provider.
	ErrProviderNotConfigured = errors.New("provider not configured")

	// ErrIndexOutOfRange indicates a positional removal used a stale index.
	// This is a caller bug, not a user error.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrSessionClosed indicates the session was submitted or cancelled
	// and no longer accepts changes.
	ErrSessionClosed = errors.New("session closed")
)

// ErrEmptySourceSet is returned when a request is built from an empty collection.
var ErrEmptySourceSet = &ValidationError{Field: "sources", Message: "at least one source required"}

// ValidationError reports a missing or malformed user-supplied field.
type ValidationError struct {
	// Field names the offending input (e.g. "title", "content", "sources").
	Field string

	// Message is a short human-readable reason.
	Message string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// SourceUnavailableError wraps the collaborator failure that prevented
// a source from being read.
type SourceUnavailableError struct {
	Identifier string
	Err        error
}

// Error implements error.
func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("source unavailable: %s", e.Identifier)
	}
	return fmt.Sprintf("source unavailable: %s: %v", e.Identifier, e.Err)
}

// Unwrap returns the underlying read failure.
func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSourceUnavailable.
func (e *SourceUnavailableError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

// ProviderNotConfiguredError names the provider that cannot be used.
type ProviderNotConfiguredError struct {
	Provider AIProvider
}

// Error implements error.
func (e *ProviderNotConfiguredError) Error() string {
	if e.Provider == "" {
		return "no analysis provider selected"
	}
	return fmt.Sprintf("%s is not configured (missing API key or unknown provider)", e.Provider.Description())
}

// Unwrap lets errors.Is match ErrProviderNotConfigured.
func (e *ProviderNotConfiguredError) Unwrap() error {
	return ErrProviderNotConfigured
}

// IndexOutOfRangeError reports a positional access outside [0, Length).
type IndexOutOfRangeError struct {
	Index  int
	Length int
}

// Error implements error.
func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Length)
}

// Unwrap lets errors.Is match ErrIndexOutOfRange.
func (e *IndexOutOfRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}
