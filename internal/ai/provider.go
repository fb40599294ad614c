package ai

import (
	"context"
	"errors"
	"fmt"

	"smsdispatch/internal/config"
)

// ErrOutOfScope marks a request outside the assistant's allowed scope.
var ErrOutOfScope = errors.New("request out of scope")

// Provider generates text completions from a prompt
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the configured provider
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
		return NewGeminiProvider(cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
		}
		return NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}
