package llm

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a failed call to a model provider. StatusCode 0 means no
// HTTP reply was received (connection refused, DNS failure, timeout).
type APIError struct {
	Provider   string
	StatusCode int
	Message    string

	// Type and Code carry the provider's own error classification when
	// the reply body includes one.
	Type string
	Code string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: API error (status %d, type %s): %s", e.Provider, e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// IsTransient reports whether a retry of the same request could
// plausibly succeed: no reply at all, rate limiting, or a 5xx.
func (e *APIError) IsTransient() bool {
	return e.StatusCode == 0 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode >= 500
}

// isTransientError unwraps err looking for a retryable APIError.
func isTransientError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsTransient()
	}
	return false
}
