// Package assist drafts SQL, explains SQL and summarizes results through a
// hosted text-generation API.
package assist

import (
	"context"
	"fmt"
	"strings"
)

// Provider sends a single-turn prompt and returns the reply text.
type Provider interface {
	Name() string
	Model() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Compile-time interface compliance checks.
var (
	_ Provider = (*AnthropicProvider)(nil)
	_ Provider = (*OpenAIProvider)(nil)
)

// Provider names accepted in configuration.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config selects and configures a provider.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
}

// KeyEnv returns the environment variable holding the provider's API key.
func KeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return "ANTHROPIC_API_KEY"
	}
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch strings.ToLower(provider) {
	case ProviderOpenAI:
		return "gpt-4o"
	default:
		return "claude-sonnet-4-20250514"
	}
}

// NewProvider builds the configured provider. A blank API key yields a nil
// provider, meaning assistance is not configured.
func NewProvider(cfg Config, apiKey string) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = ProviderAnthropic
	}
	if name != ProviderAnthropic && name != ProviderOpenAI {
		return nil, fmt.Errorf("unknown AI provider %q (expected %s or %s)", cfg.Provider, ProviderAnthropic, ProviderOpenAI)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel(name)
	}
	if name == ProviderOpenAI {
		return NewOpenAIProvider(apiKey, cfg.BaseURL, model), nil
	}
	return NewAnthropicProvider(apiKey, cfg.BaseURL, model), nil
}
