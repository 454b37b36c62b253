package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

func TestParseTone(t *testing.T) {
	tests := map[string]domain.Tone{
		"calm":     domain.ToneCalm,
		" Calm ":   domain.ToneCalm,
		"MINIMAL":  domain.ToneMinimal,
		"friendly": domain.ToneFriendly,
		"":         domain.ToneFriendly,
		"grumpy":   domain.ToneFriendly,
	}
	for in, want := range tests {
		assert.Equal(t, want, domain.ParseTone(in), "input %q", in)
	}
}

func TestToTurns(t *testing.T) {
	msgs := []*domain.Message{
		{Author: domain.RoleAssistant, Text: "welcome"},
		nil,
		{Author: domain.RoleUser, Text: "hi"},
	}

	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleAssistant, Content: "welcome"},
		{Role: domain.RoleUser, Content: "hi"},
	}, domain.ToTurns(msgs))

	assert.Empty(t, domain.ToTurns(nil))
}

func TestEmotionsEndsWithSentinel(t *testing.T) {
	all := domain.Emotions()
	assert.Len(t, all, 12)
	assert.Equal(t, domain.EmotionHappy, all[0])
	assert.Equal(t, domain.EmotionDistressed, all[len(all)-1])
}

func TestIsEmotion(t *testing.T) {
	for _, e := range domain.Emotions() {
		assert.True(t, domain.IsEmotion(e), e)
	}
	assert.False(t, domain.IsEmotion("banana"))
	assert.False(t, domain.IsEmotion(""))
}
