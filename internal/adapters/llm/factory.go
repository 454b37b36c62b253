package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/dost-companion/internal/config"
	"github.com/PabloGalante/dost-companion/internal/domain"
)

// NewProviders builds every known provider in fallback order: gemini,
// openai, groq, openrouter, anthropic. Providers without credentials are
// still returned; the gateway skips them. With UseMock only the mock
// provider is returned.
func NewProviders(ctx context.Context, cfg *config.Config) ([]domain.Provider, error) {
	if cfg.AI.UseMock {
		return []domain.Provider{NewMockProvider()}, nil
	}

	gemini, err := NewGeminiProvider(ctx, GeminiConfig{
		APIKey:    cfg.AI.Gemini.APIKey,
		Model:     cfg.AI.Gemini.Model,
		UseVertex: cfg.AI.UseVertex,
		Project:   cfg.GCPProjectID,
		Location:  cfg.GCPLocation,
		BaseURL:   cfg.AI.Gemini.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing gemini provider: %w", err)
	}

	providers := []domain.Provider{
		gemini,
		NewOpenAIProvider(openAIConfig(cfg.AI.OpenAI)),
		NewGroqProvider(openAIConfig(cfg.AI.Groq)),
		NewOpenRouterProvider(openAIConfig(cfg.AI.OpenRouter)),
		NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.AI.Anthropic.APIKey,
			Model:   cfg.AI.Anthropic.Model,
			BaseURL: cfg.AI.Anthropic.BaseURL,
		}),
	}

	out := make([]domain.Provider, len(providers))
	for i, p := range providers {
		out[i] = WithMetrics(p)
	}
	return out, nil
}

func openAIConfig(p config.ProviderConfig) OpenAIConfig {
	return OpenAIConfig{APIKey: p.APIKey, Model: p.Model, BaseURL: p.BaseURL}
}
