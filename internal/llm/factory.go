package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates an LLM provider based on configuration.
// An empty provider name defaults to Anthropic, matching the service's
// primary deployment.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "anthropic", "claude", "":
		return NewAnthropicProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: anthropic, openai)", config.Provider)
	}
}
