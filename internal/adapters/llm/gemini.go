package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/dost-companion/internal/domain"
	"google.golang.org/genai"
)

// GeminiConfig configures the Gemini provider. With UseVertex the client
// authenticates through Application Default Credentials against Project;
// otherwise APIKey is required.
type GeminiConfig struct {
	APIKey    string
	Model     string
	UseVertex bool
	Project   string
	Location  string
	BaseURL   string // tests only
}

type GeminiProvider struct {
	client    *genai.Client
	modelName string
}

// NewGeminiProvider creates a Gemini provider. Without credentials it
// returns an unavailable provider rather than an error.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}
	p := &GeminiProvider{modelName: modelName}

	cc := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	}
	switch {
	case cfg.UseVertex && cfg.Project != "":
		location := cfg.Location
		if location == "" {
			location = "us-central1"
		}
		cc.Backend = genai.BackendVertexAI
		cc.Project = cfg.Project
		cc.Location = location
	case cfg.APIKey != "":
		cc.Backend = genai.BackendGeminiAPI
		cc.APIKey = cfg.APIKey
	default:
		return p, nil
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	p.client = client
	return p, nil
}

func (p *GeminiProvider) Name() string    { return "gemini" }
func (p *GeminiProvider) Available() bool { return p.client != nil }

// Generate implements domain.Provider using the Gemini API (or Vertex AI).
func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt string, turns []domain.Turn) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("gemini credentials not configured")
	}

	// Gemini only knows user and model roles
	var contents []*genai.Content
	for _, t := range turns {
		var role genai.Role
		switch t.Role {
		case domain.RoleAssistant:
			role = genai.RoleModel
		case domain.RoleSystem:
			continue
		default:
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}

	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		MaxOutputTokens:   int32(1024),
	}

	res, err := p.client.Models.GenerateContent(ctx, p.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}
