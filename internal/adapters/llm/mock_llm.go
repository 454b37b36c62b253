package llm

import (
	"context"
	"fmt"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

// MockProvider answers without calling any backend. Useful for local
// development and demos.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Name() string    { return "mock" }
func (m *MockProvider) Available() bool { return true }

func (m *MockProvider) Generate(ctx context.Context, systemPrompt string, turns []domain.Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	last := ""
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == domain.RoleUser {
			last = turns[i].Content
			break
		}
	}

	// Here we could use minimal rules to give Dost some personality
	return fmt.Sprintf("I hear you. You said %q. Tell me a bit more about how that makes you feel? 💙", last), nil
}
