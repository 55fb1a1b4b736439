// Package llm provides the generative text backend used for competitor
// discovery. Only single-prompt generation is needed here; providers speak
// REST directly rather than pulling in vendor SDKs.
package llm

import (
	"context"
	"errors"
)

// Provider names for configuration.
const (
	ProviderGemini = "gemini"
)

// Common errors returned by LLM providers.
var (
	ErrNoAPIKey     = errors.New("llm: API key not configured")
	ErrRateLimit    = errors.New("llm: rate limit exceeded")
	ErrProviderDown = errors.New("llm: provider unavailable")
	ErrInvalidModel = errors.New("llm: invalid model")
)

// Provider is the interface a generative backend must implement.
type Provider interface {
	// Name returns the provider identifier (e.g., "gemini").
	Name() string

	// Generate sends a single prompt and returns the model's text response.
	Generate(ctx context.Context, prompt string) (string, error)
}
