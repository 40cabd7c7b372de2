// Package llm provides the generative-model client used for keyword
// optimization, abstract synthesis, and relevance analysis.
//
// The package defines a small completion interface and two provider
// implementations (Anthropic, OpenAI). Callers treat the model as an
// untrusted collaborator: it may fail with transport or quota errors,
// and it may return text that is not valid structured data. The
// degradation logic that tolerates both lives with the callers, not
// here.
package llm

import "context"

// Request is a single completion request.
type Request struct {
	// Prompt is the full instruction sent as the user message.
	Prompt string

	// MaxTokens bounds the length of the reply.
	MaxTokens int

	// Temperature controls sampling randomness.
	Temperature float64
}

// Usage contains token usage information reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the raw text reply from the model.
type Response struct {
	// Content is the reply text. It is not guaranteed to be valid JSON
	// even when the prompt demands it.
	Content string

	// Model is the model that produced the reply.
	Model string

	// Usage is the token usage for the call.
	Usage Usage
}

// Client is the completion interface implemented by all providers.
//
// Implementations must respect context cancellation and return wrapped
// errors carrying provider context.
type Client interface {
	// Complete sends one prompt and returns the raw reply text.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Provider returns the provider name (e.g. "anthropic", "openai").
	Provider() string

	// Model returns the model identifier being used.
	Model() string
}
