package gateway_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	"github.com/PabloGalante/dost-companion/internal/domain"
)

func TestBuildSystemPrompt_DefaultPersonaAndTone(t *testing.T) {
	got := gateway.BuildSystemPrompt("", domain.Tone("unknown"), nil)

	assert.True(t, strings.HasPrefix(got, strings.TrimSpace(gateway.DefaultPersona)))
	assert.Contains(t, got, "Vibe check: ")
	assert.Equal(t, got, gateway.BuildSystemPrompt("", domain.ToneFriendly, nil))
	assert.NotContains(t, got, "Current user emotional state")
}

func TestBuildSystemPrompt_TonesDiffer(t *testing.T) {
	calm := gateway.BuildSystemPrompt("p", domain.ToneCalm, nil)
	friendly := gateway.BuildSystemPrompt("p", domain.ToneFriendly, nil)
	minimal := gateway.BuildSystemPrompt("p", domain.ToneMinimal, nil)

	assert.NotEqual(t, calm, friendly)
	assert.NotEqual(t, friendly, minimal)
	assert.NotEqual(t, calm, minimal)
}

func TestBuildSystemPrompt_EmotionContext(t *testing.T) {
	got := gateway.BuildSystemPrompt("p", domain.ToneCalm, &domain.EmotionContext{
		Emotion:     domain.EmotionStressed,
		StressLevel: domain.StressHigh,
		Impact: domain.ConversationalImpact{
			Trend:     domain.TrendConcerning,
			Narrative: "User may need more support",
		},
	})

	assert.Contains(t, got, "Current user emotional state: stressed")
	assert.Contains(t, got, "Stress level: high")
	assert.Contains(t, got, "Therapeutic approach: ")
	assert.Contains(t, got, "Helpful techniques: ")
	assert.Contains(t, got, "Conversation impact: User may need more support (trend: concerning)")
}

func TestBuildSystemPrompt_EveryEmotionHasHints(t *testing.T) {
	for _, e := range domain.Emotions() {
		got := gateway.BuildSystemPrompt("p", domain.ToneFriendly, &domain.EmotionContext{Emotion: e})
		i := strings.Index(got, "Therapeutic approach: ")
		if assert.GreaterOrEqual(t, i, 0, "emotion %s", e) {
			rest := got[i+len("Therapeutic approach: "):]
			assert.False(t, strings.HasPrefix(rest, "\n"), "emotion %s has no approach", e)
		}
	}
}
