package journal_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/dost-companion/internal/adapters/storage/memory"
	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	"github.com/PabloGalante/dost-companion/internal/app/journal"
	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/domain"
)

func TestAddEntry_DetectsMood(t *testing.T) {
	ctx := context.Background()
	svc := journal.NewService(memory.NewJournalStore(), nil)

	entry, err := svc.AddEntry(ctx, journal.AddEntryInput{
		UserID:  "u",
		Title:   "Tuesday",
		Content: "Felt lonely and isolated after work",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, domain.EmotionLonely, entry.Mood)
	assert.False(t, entry.IsCrisis)
}

func TestAddEntry_KeepsChosenMood(t *testing.T) {
	svc := journal.NewService(memory.NewJournalStore(), nil)

	entry, err := svc.AddEntry(context.Background(), journal.AddEntryInput{
		UserID:  "u",
		Content: "Felt lonely today",
		Mood:    domain.EmotionCalm,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EmotionCalm, entry.Mood)
}

func TestAddEntry_FlagsCrisis(t *testing.T) {
	svc := journal.NewService(memory.NewJournalStore(), nil)

	entry, err := svc.AddEntry(context.Background(), journal.AddEntryInput{
		UserID:  "u",
		Content: "Some days I think there is no reason to live",
	})
	require.NoError(t, err)
	assert.True(t, entry.IsCrisis)
}

func TestAddEntry_RejectsEmpty(t *testing.T) {
	svc := journal.NewService(memory.NewJournalStore(), nil)

	_, err := svc.AddEntry(context.Background(), journal.AddEntryInput{UserID: "u", Content: "   "})
	assert.ErrorIs(t, err, journal.ErrEmptyContent)
}

func TestGetUserJournal(t *testing.T) {
	ctx := context.Background()
	svc := journal.NewService(memory.NewJournalStore(), nil)

	for _, c := range []string{"first", "second", "third"} {
		_, err := svc.AddEntry(ctx, journal.AddEntryInput{UserID: "u", Content: c})
		require.NoError(t, err)
	}

	entries, err := svc.GetUserJournal(ctx, "u", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Content)
	assert.Equal(t, "third", entries[1].Content)

	entries, err = svc.GetUserJournal(ctx, "u", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

type stubReplies struct {
	reply gateway.Reply

	calls   int
	tone    domain.Tone
	history []domain.Turn
	ec      *domain.EmotionContext
}

func (s *stubReplies) GenerateReply(_ context.Context, history []domain.Turn, tone domain.Tone, ec *domain.EmotionContext) gateway.Reply {
	s.calls++
	s.history = history
	s.tone = tone
	s.ec = ec
	return s.reply
}

func TestAddEntry_Reflection(t *testing.T) {
	replies := &stubReplies{reply: gateway.Reply{Text: " It sounds like work took a lot out of you. ", Source: "gemini"}}
	svc := journal.NewService(memory.NewJournalStore(), replies)

	entry, err := svc.AddEntry(context.Background(), journal.AddEntryInput{
		UserID:  "u",
		Content: "So stressed about the deadline at work",
		Reflect: true,
	})
	require.NoError(t, err)

	assert.True(t, entry.AIReflectionEnabled)
	assert.Equal(t, "It sounds like work took a lot out of you.", entry.AIReflection)
	assert.Equal(t, 1, replies.calls)
	assert.Equal(t, domain.ToneCalm, replies.tone)
	require.Len(t, replies.history, 1)
	assert.Equal(t, domain.RoleUser, replies.history[0].Role)
	assert.True(t, strings.Contains(replies.history[0].Content, "So stressed about the deadline at work"))
	require.NotNil(t, replies.ec)
	assert.Equal(t, domain.EmotionStressed, replies.ec.Emotion)
}

func TestAddEntry_ReflectionFallsBack(t *testing.T) {
	replies := &stubReplies{reply: gateway.Reply{Text: "Hey! So good to hear from you.", Source: gateway.SourceFallback}}
	svc := journal.NewService(memory.NewJournalStore(), replies)

	entry, err := svc.AddEntry(context.Background(), journal.AddEntryInput{UserID: "u", Content: "quiet day", Reflect: true})
	require.NoError(t, err)
	assert.Equal(t, journal.ReflectionFallback, entry.AIReflection)

	svc = journal.NewService(memory.NewJournalStore(), nil)
	entry, err = svc.AddEntry(context.Background(), journal.AddEntryInput{UserID: "u", Content: "quiet day", Reflect: true})
	require.NoError(t, err)
	assert.Equal(t, journal.ReflectionFallback, entry.AIReflection)
}

func TestAddEntry_CrisisReflectionSkipsProvider(t *testing.T) {
	replies := &stubReplies{reply: gateway.Reply{Text: "should not be used", Source: "gemini"}}
	svc := journal.NewService(memory.NewJournalStore(), replies)

	entry, err := svc.AddEntry(context.Background(), journal.AddEntryInput{
		UserID:  "u",
		Content: "I want to die",
		Reflect: true,
	})
	require.NoError(t, err)

	assert.True(t, entry.IsCrisis)
	assert.Equal(t, triage.CrisisResponse, entry.AIReflection)
	assert.Zero(t, replies.calls)
}

func TestAddEntry_ReflectionDisabled(t *testing.T) {
	store := memory.NewJournalStore()
	replies := &stubReplies{reply: gateway.Reply{Text: "unused", Source: "gemini"}}
	svc := journal.NewService(store, replies)

	entry, err := svc.AddEntry(context.Background(), journal.AddEntryInput{UserID: "u", Content: "a plain note"})
	require.NoError(t, err)

	assert.False(t, entry.AIReflectionEnabled)
	assert.Empty(t, entry.AIReflection)
	assert.Zero(t, replies.calls)

	stored, err := svc.GetUserJournal(context.Background(), "u", 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Empty(t, stored[0].AIReflection)
}
