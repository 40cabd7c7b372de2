package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrInvalidInput indicates that caller-supplied data is invalid.
	// Input errors are reported before any external call and are never
	// retried or degraded.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSearchFailed indicates that the literature feed could not be
	// queried.
	ErrSearchFailed = errors.New("search failed")

	// ErrSearchTimeout indicates that the literature feed did not
	// respond within the transport timeout.
	ErrSearchTimeout = errors.New("search timed out")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// SearchTimeoutError reports a literature feed timeout.
type SearchTimeoutError struct {
	Source string
	Cause  error
}

// Error implements the error interface.
func (e *SearchTimeoutError) Error() string {
	return fmt.Sprintf("%s did not respond in time: %v", e.Source, e.Cause)
}

// Unwrap returns the sentinel so callers can match with errors.Is.
func (e *SearchTimeoutError) Unwrap() error {
	return ErrSearchTimeout
}

// ExternalAPIError provides details about an external API failure
// during retrieval. The underlying cause is attached for logging; the
// orchestrator does not retry.
type ExternalAPIError struct {
	Source     string
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Source, e.StatusCode, e.Message)
}

// Unwrap returns the sentinel search failure error.
func (e *ExternalAPIError) Unwrap() error {
	return ErrSearchFailed
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewSearchTimeoutError creates a new SearchTimeoutError.
func NewSearchTimeoutError(source string, cause error) *SearchTimeoutError {
	return &SearchTimeoutError{
		Source: source,
		Cause:  cause,
	}
}

// NewExternalAPIError creates a new ExternalAPIError.
func NewExternalAPIError(source string, statusCode int, message string, cause error) *ExternalAPIError {
	return &ExternalAPIError{
		Source:     source,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}
