package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("creates anthropic client", func(t *testing.T) {
		client, err := NewClient(FactoryConfig{
			Provider:   "anthropic",
			Timeout:    30 * time.Second,
			MaxRetries: 2,
			Anthropic: AnthropicConfig{
				APIKey: "test-key",
				Model:  "claude-3-5-sonnet-20241022",
			},
		})

		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "anthropic", client.Provider())
		assert.Equal(t, "claude-3-5-sonnet-20241022", client.Model())
		assert.IsType(t, &AnthropicClient{}, client)
	})

	t.Run("creates openai client", func(t *testing.T) {
		client, err := NewClient(FactoryConfig{
			Provider: "openai",
			OpenAI: OpenAIConfig{
				APIKey: "test-key",
				Model:  "gpt-4-turbo",
			},
		})

		require.NoError(t, err)
		require.NotNil(t, client)
		assert.Equal(t, "openai", client.Provider())
		assert.Equal(t, "gpt-4-turbo", client.Model())
		assert.IsType(t, &OpenAIClient{}, client)
	})

	t.Run("applies default models", func(t *testing.T) {
		client, err := NewClient(FactoryConfig{
			Provider:  "anthropic",
			Anthropic: AnthropicConfig{APIKey: "test-key"},
		})

		require.NoError(t, err)
		assert.Equal(t, defaultAnthropicModel, client.Model())
	})

	t.Run("rejects unsupported provider", func(t *testing.T) {
		client, err := NewClient(FactoryConfig{Provider: "bedrock"})

		require.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "unsupported LLM provider")
		assert.Contains(t, err.Error(), "bedrock")
	})

	t.Run("rejects empty provider", func(t *testing.T) {
		client, err := NewClient(FactoryConfig{})

		require.Error(t, err)
		assert.Nil(t, client)
	})
}
