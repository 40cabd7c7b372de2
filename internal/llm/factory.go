package llm

import (
	"fmt"
	"time"
)

// FactoryConfig holds the parameters needed to create a Client.
// This is defined in the llm package to avoid importing the config package,
// keeping the llm package free of infrastructure dependencies.
type FactoryConfig struct {
	// Provider is the LLM provider name ("anthropic" or "openai").
	Provider string
	// Timeout is the timeout for LLM API calls.
	Timeout time.Duration
	// MaxRetries is the maximum number of retries for failed calls.
	MaxRetries int
	// RetryDelay is the base delay between retries. Zero uses the
	// provider default.
	RetryDelay time.Duration
	// Anthropic contains Anthropic-specific settings.
	Anthropic AnthropicConfig
	// OpenAI contains OpenAI-specific settings.
	OpenAI OpenAIConfig
}

// NewClient creates a Client based on the configuration. Supports
// "anthropic" and "openai" providers. Returns an error for unsupported
// or empty provider values.
func NewClient(cfg FactoryConfig) (Client, error) {
	switch cfg.Provider {
	case "anthropic":
		return NewAnthropicClient(cfg.Anthropic, cfg.Timeout, cfg.MaxRetries, cfg.RetryDelay), nil
	case "openai":
		return NewOpenAIClient(cfg.OpenAI, cfg.Timeout, cfg.MaxRetries, cfg.RetryDelay), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q", cfg.Provider)
	}
}
