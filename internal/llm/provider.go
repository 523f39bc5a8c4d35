// Package llm abstracts the chat-completion providers used for update
// classification. Providers are interchangeable behind the Provider
// interface and selected via configuration at startup.
package llm

import "context"

// Provider is a chat-completion backend.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Complete sends a single-turn completion request and returns the
	// raw model output. Callers own all parsing and validation of the
	// returned text.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request is a single-turn completion request.
type Request struct {
	// System is the system prompt.
	System string

	// Content is the user message.
	Content string

	// Model overrides the configured model when non-empty.
	Model string

	// MaxTokens limits the response length (0 means provider default).
	MaxTokens int

	// Temperature controls sampling. Classification wants it low.
	Temperature float32
}

// Response is the raw completion output.
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration.
type Config struct {
	// Provider name: "anthropic" or "openai".
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey for the provider.
	APIKey string

	// BaseURL for custom endpoints (tests point this at httptest servers).
	BaseURL string

	// Timeout for API requests, in seconds.
	Timeout int

	// MaxTokens default for response generation.
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "anthropic",
		Timeout:   60,
		MaxTokens: 1500,
	}
}
