package llm

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	t.Run("includes type when present", func(t *testing.T) {
		err := &APIError{
			Provider:   "anthropic",
			StatusCode: 429,
			Message:    "rate limit exceeded",
			Type:       "rate_limit_error",
		}

		assert.Equal(t, "anthropic: API error (status 429, type rate_limit_error): rate limit exceeded", err.Error())
	})

	t.Run("omits type when absent", func(t *testing.T) {
		err := &APIError{
			Provider:   "openai",
			StatusCode: 500,
			Message:    "internal server error",
		}

		assert.Equal(t, "openai: API error (status 500): internal server error", err.Error())
	})
}

func TestAPIError_IsTransient(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		want       bool
	}{
		{name: "network error (no response)", statusCode: 0, want: true},
		{name: "rate limited", statusCode: http.StatusTooManyRequests, want: true},
		{name: "internal server error", statusCode: 500, want: true},
		{name: "service unavailable", statusCode: 503, want: true},
		{name: "bad request", statusCode: 400, want: false},
		{name: "unauthorized", statusCode: 401, want: false},
		{name: "not found", statusCode: 404, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &APIError{Provider: "anthropic", StatusCode: tt.statusCode}
			assert.Equal(t, tt.want, err.IsTransient())
		})
	}
}

func TestIsTransientError(t *testing.T) {
	t.Run("matches wrapped APIError", func(t *testing.T) {
		inner := &APIError{Provider: "openai", StatusCode: 503}
		wrapped := fmt.Errorf("call failed: %w", inner)

		assert.True(t, isTransientError(wrapped))
	})

	t.Run("false for non-transient APIError", func(t *testing.T) {
		assert.False(t, isTransientError(&APIError{Provider: "openai", StatusCode: 401}))
	})

	t.Run("false for plain errors", func(t *testing.T) {
		assert.False(t, isTransientError(errors.New("something broke")))
	})
}
