package triage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/domain"
)

func user(s string) domain.Turn      { return domain.Turn{Role: domain.RoleUser, Content: s} }
func assistant(s string) domain.Turn { return domain.Turn{Role: domain.RoleAssistant, Content: s} }

func TestDetectConversationImpact_ShortHistory(t *testing.T) {
	for _, h := range [][]domain.Turn{nil, {user("I'm so sad")}} {
		got := triage.DetectConversationImpact(h)
		assert.Equal(t, domain.TrendNeutral, got.Trend)
		assert.Equal(t, "starting conversation", got.Narrative)
	}
}

func TestDetectConversationImpact_NoUserTurns(t *testing.T) {
	got := triage.DetectConversationImpact([]domain.Turn{assistant("hello"), assistant("still here")})
	assert.Equal(t, domain.TrendNeutral, got.Trend)
	assert.Equal(t, "listening", got.Narrative)
}

func TestDetectConversationImpact_Trends(t *testing.T) {
	tests := []struct {
		name    string
		history []domain.Turn
		want    domain.Trend
	}{
		{
			name:    "positive",
			history: []domain.Turn{user("I'm sad"), assistant("..."), user("feeling hopeful"), assistant("..."), user("I'm happy now")},
			want:    domain.TrendPositive,
		},
		{
			name:    "concerning",
			history: []domain.Turn{user("I'm happy"), assistant("..."), user("now I'm anxious"), assistant("..."), user("and angry")},
			want:    domain.TrendConcerning,
		},
		{
			name:    "mixed is neutral",
			history: []domain.Turn{user("I'm sad"), assistant("..."), user("I'm calm")},
			want:    domain.TrendNeutral,
		},
		{
			name: "only last five turns count",
			history: []domain.Turn{
				user("happy"), user("happy"), user("happy"),
				user("sad"), assistant("..."), user("stressed"), assistant("..."), assistant("..."),
			},
			want: domain.TrendConcerning,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, triage.DetectConversationImpact(tt.history).Trend)
		})
	}
}

func TestDetectConversationImpact_CollectsProgression(t *testing.T) {
	got := triage.DetectConversationImpact([]domain.Turn{user("overwhelmed"), assistant("..."), user("feeling calm")})
	assert.Equal(t, []domain.Emotion{domain.EmotionStressed, domain.EmotionCalm}, got.RecentEmotions)
	assert.Equal(t, []domain.StressLevel{domain.StressHigh, domain.StressLow}, got.StressProgression)
	assert.NotEmpty(t, got.Narrative)
}
