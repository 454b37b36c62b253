package conversation_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/dost-companion/internal/adapters/llm"
	"github.com/PabloGalante/dost-companion/internal/adapters/storage/memory"
	"github.com/PabloGalante/dost-companion/internal/app/conversation"
	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/domain"
)

type fixture struct {
	svc      *conversation.Service
	messages *memory.MessageStore
	crisis   *memory.CrisisLogStore
}

func newFixture(t *testing.T, providers ...domain.Provider) fixture {
	t.Helper()
	messages := memory.NewMessageStore()
	crisis := memory.NewCrisisLogStore()
	tr := triage.NewService(gateway.New(providers, nil))
	svc := conversation.NewService(tr, memory.NewSessionStore(), messages, crisis)
	return fixture{svc: svc, messages: messages, crisis: crisis}
}

// recordingTriager remembers the history it was given.
type recordingTriager struct {
	histories [][]domain.Turn
}

func (r *recordingTriager) Triage(_ context.Context, message string, history []domain.Turn, _ string) domain.TriageResult {
	r.histories = append(r.histories, history)
	return domain.TriageResult{ResponseText: "echo: " + message, DetectedEmotion: domain.EmotionNeutral, ResponseSource: "stub"}
}

func TestStartSessionAndSendMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockProvider())

	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{
		UserID:        "test-user",
		PreferredTone: domain.ToneCalm,
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Session.ID)
	assert.Equal(t, domain.ToneCalm, out.Session.PreferredTone)
	assert.Equal(t, conversation.WelcomeMessage, out.Welcome.Text)

	reply, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{
		SessionID: out.Session.ID,
		UserID:    out.Session.UserID,
		Text:      "I feel so anxious about my exam tomorrow",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, reply.AssistantMessage.Text)
	assert.Equal(t, "mock", reply.Triage.ResponseSource)
	assert.Equal(t, domain.EmotionAnxious, reply.UserMessage.DetectedEmotion)
	assert.False(t, reply.UserMessage.IsCrisis)

	session, msgs, err := f.svc.GetSessionTimeline(ctx, out.Session.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, domain.RoleAssistant, msgs[0].Author)
	assert.Equal(t, domain.RoleUser, msgs[1].Author)
	assert.Equal(t, domain.RoleAssistant, msgs[2].Author)
	assert.Equal(t, "I feel so anxious about my exam tomorrow", session.Title)
}

func TestSendMessage_TitleTruncated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u"})
	require.NoError(t, err)

	long := strings.Repeat("é", 80)
	_, err = f.svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: out.Session.ID, Text: long})
	require.NoError(t, err)

	session, _, err := f.svc.GetSessionTimeline(ctx, out.Session.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), session.Title)
}

func TestSendMessage_CrisisIsLogged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockProvider())

	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u1"})
	require.NoError(t, err)

	reply, err := f.svc.SendMessage(ctx, conversation.SendMessageInput{
		SessionID: out.Session.ID,
		Text:      "I want to kill myself",
	})
	require.NoError(t, err)

	assert.True(t, reply.Triage.IsCrisis)
	assert.True(t, reply.UserMessage.IsCrisis)
	assert.Equal(t, triage.CrisisResponse, reply.AssistantMessage.Text)

	logs, err := f.svc.ListCrisisLogs(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, reply.UserMessage.ID, logs[0].MessageID)
	assert.Equal(t, out.Session.ID, logs[0].SessionID)
}

func TestSendMessage_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SendMessage(context.Background(), conversation.SendMessageInput{SessionID: "nope", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSendMessage_WrongOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "owner"})
	require.NoError(t, err)

	_, err = f.svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: out.Session.ID, UserID: "intruder", Text: "hi"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSendMessage_HistoryExcludesCurrentAndIsBounded(t *testing.T) {
	ctx := context.Background()
	rec := &recordingTriager{}
	svc := conversation.NewService(rec, memory.NewSessionStore(), memory.NewMessageStore(), memory.NewCrisisLogStore(),
		conversation.WithHistoryLimit(3))

	out, err := svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u"})
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.SendMessage(ctx, conversation.SendMessageInput{SessionID: out.Session.ID, Text: text})
		require.NoError(t, err)
	}

	require.Len(t, rec.histories, 3)
	assert.Len(t, rec.histories[0], 1) // welcome only
	last := rec.histories[2]
	require.Len(t, last, 3)
	assert.Equal(t, "echo: one", last[0].Content)
	assert.Equal(t, "two", last[1].Content)
	assert.Equal(t, "echo: two", last[2].Content)
}

func TestListAndDeleteHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u"})
	require.NoError(t, err)
	_, err = f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "u"})
	require.NoError(t, err)
	_, err = f.svc.StartSession(ctx, conversation.StartSessionInput{UserID: "someone-else"})
	require.NoError(t, err)

	sessions, err := f.svc.ListSessions(ctx, "u", 0)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	n, err := f.svc.DeleteHistory(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	sessions, err = f.svc.ListSessions(ctx, "u", 0)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	msgs, err := f.messages.GetMessagesBySession(ctx, first.Session.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	others, err := f.svc.ListSessions(ctx, "someone-else", 0)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
