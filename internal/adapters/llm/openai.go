package llm

import (
	"context"
	"fmt"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

const (
	groqBaseURL       = "https://api.groq.com/openai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// OpenAIConfig configures any OpenAI-compatible chat completions backend.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIProvider talks to the chat completions API. Groq and OpenRouter
// expose the same API under another base URL.
type OpenAIProvider struct {
	name   string
	apiKey string
	model  string
	client openai.Client
}

func newOpenAICompatible(name string, cfg OpenAIConfig, defaultModel, defaultBaseURL string) *OpenAIProvider {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	// Retries are the gateway's business: a failing backend yields to the next one.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{}),
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIProvider{
		name:   name,
		apiKey: cfg.APIKey,
		model:  model,
		client: openai.NewClient(opts...),
	}
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	return newOpenAICompatible("openai", cfg, openai.ChatModelGPT4oMini, "")
}

func NewGroqProvider(cfg OpenAIConfig) *OpenAIProvider {
	return newOpenAICompatible("groq", cfg, "llama-3.3-70b-versatile", groqBaseURL)
}

func NewOpenRouterProvider(cfg OpenAIConfig) *OpenAIProvider {
	return newOpenAICompatible("openrouter", cfg, "meta-llama/llama-3.3-70b-instruct:free", openRouterBaseURL)
}

func (p *OpenAIProvider) Name() string    { return p.name }
func (p *OpenAIProvider) Available() bool { return p.apiKey != "" }

func (p *OpenAIProvider) Generate(ctx context.Context, systemPrompt string, turns []domain.Turn) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("%s API key not configured", p.name)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(t.Content))
		case domain.RoleSystem:
			messages = append(messages, openai.SystemMessage(t.Content))
		default:
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   openai.Int(300),
		Temperature: openai.Float(0.7),
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", p.name)
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("%s returned empty text", p.name)
	}
	return text, nil
}
