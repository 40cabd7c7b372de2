package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(serverURL string, maxRetries int) *OpenAIClient {
	return NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4-turbo",
		BaseURL: serverURL,
	}, 5*time.Second, maxRetries, 5*time.Millisecond)
}

func openAISuccessBody(text string) string {
	return `{
		"id": "chatcmpl-01",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": ` + mustJSON(text) + `}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 80, "completion_tokens": 30, "total_tokens": 110}
	}`
}

func TestOpenAIClient_Complete(t *testing.T) {
	t.Run("returns first choice content", func(t *testing.T) {
		var gotBody chatRequest
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/chat/completions", r.URL.Path)
			gotAuth = r.Header.Get("Authorization")

			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &gotBody))

			w.Write([]byte(openAISuccessBody("the reply")))
		}))
		defer server.Close()

		client := newTestOpenAIClient(server.URL, 0)

		resp, err := client.Complete(context.Background(), Request{
			Prompt:      "analyze this paper",
			MaxTokens:   500,
			Temperature: 0.2,
		})
		require.NoError(t, err)

		assert.Equal(t, "the reply", resp.Content)
		assert.Equal(t, "gpt-4-turbo", resp.Model)
		assert.Equal(t, 80, resp.Usage.InputTokens)
		assert.Equal(t, 30, resp.Usage.OutputTokens)

		assert.Equal(t, "Bearer test-key", gotAuth)
		assert.Equal(t, "gpt-4-turbo", gotBody.Model)
		assert.Equal(t, 500, gotBody.MaxTokens)
		assert.Equal(t, 0.2, gotBody.Temperature)
		require.Len(t, gotBody.Messages, 1)
		assert.Equal(t, "user", gotBody.Messages[0].Role)
		assert.Equal(t, "analyze this paper", gotBody.Messages[0].Content)
	})

	t.Run("errors on empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"id": "chatcmpl-01", "choices": [], "usage": {}}`))
		}))
		defer server.Close()

		client := newTestOpenAIClient(server.URL, 0)

		resp, err := client.Complete(context.Background(), Request{Prompt: "hello"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "empty choices")
	})

	t.Run("retries transient errors then succeeds", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := atomic.AddInt32(&attempts, 1)
			if n == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
				return
			}
			w.Write([]byte(openAISuccessBody("recovered")))
		}))
		defer server.Close()

		client := newTestOpenAIClient(server.URL, 2)

		resp, err := client.Complete(context.Background(), Request{Prompt: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "recovered", resp.Content)
		assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"message": "bad request", "type": "invalid_request_error", "code": "invalid_prompt"}}`))
		}))
		defer server.Close()

		client := newTestOpenAIClient(server.URL, 3)

		resp, err := client.Complete(context.Background(), Request{Prompt: "hello"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "invalid_request_error", apiErr.Type)
		assert.Equal(t, "invalid_prompt", apiErr.Code)
	})

	t.Run("gives up after retries exhausted", func(t *testing.T) {
		var attempts int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&attempts, 1)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error": {"message": "server error", "type": "server_error"}}`))
		}))
		defer server.Close()

		client := newTestOpenAIClient(server.URL, 2)

		resp, err := client.Complete(context.Background(), Request{Prompt: "hello"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "exhausted")
		assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	})

	t.Run("respects context cancellation during retry wait", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := newTestOpenAIClient(server.URL, 3)
		client.retryDelay = time.Second

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := client.Complete(ctx, Request{Prompt: "hello"})
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "context cancelled")
		assert.Less(t, elapsed, 500*time.Millisecond)
	})
}

func TestNewOpenAIClient_Defaults(t *testing.T) {
	client := NewOpenAIClient(OpenAIConfig{APIKey: "key"}, 0, -1, 0)

	assert.Equal(t, defaultOpenAIBaseURL, client.baseURL)
	assert.Equal(t, defaultOpenAIModel, client.model)
	assert.Equal(t, 60*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 0, client.maxRetries)
	assert.Equal(t, defaultOpenAIRetryDelay, client.retryDelay)
	assert.Equal(t, "openai", client.Provider())
	assert.Equal(t, defaultOpenAIModel, client.Model())
}
