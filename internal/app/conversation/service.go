// Package conversation runs chat sessions: it keeps the history, asks the
// triage pipeline for a reply and records crises.
package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

const (
	// DefaultHistoryLimit is how many stored messages feed the triage pipeline.
	DefaultHistoryLimit = 10

	titleMaxRunes = 50

	WelcomeMessage = "Hey, I'm Dost 👋 I'm here to listen. How are you feeling today?"
)

// Triager classifies a message and produces the reply. *triage.Service is
// the production implementation.
type Triager interface {
	Triage(ctx context.Context, message string, history []domain.Turn, tone string) domain.TriageResult
}

type Service struct {
	triage       Triager
	sessionStore domain.SessionStore
	messageStore domain.MessageStore
	crisisStore  domain.CrisisLogStore
	historyLimit int
	now          func() time.Time
	newID        func() string
}

type Option func(*Service)

func WithHistoryLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyLimit = n
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(
	triage Triager,
	sessionStore domain.SessionStore,
	messageStore domain.MessageStore,
	crisisStore domain.CrisisLogStore,
	opts ...Option,
) *Service {
	s := &Service{
		triage:       triage,
		sessionStore: sessionStore,
		messageStore: messageStore,
		crisisStore:  crisisStore,
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type StartSessionInput struct {
	UserID        domain.UserID
	PreferredTone domain.Tone
	Title         string
}

type StartSessionOutput struct {
	Session *domain.Session
	Welcome *domain.Message
}

func (s *Service) StartSession(ctx context.Context, in StartSessionInput) (*StartSessionOutput, error) {
	now := s.now()
	tone := domain.ParseTone(string(in.PreferredTone))

	log := observability.LoggerFromContext(ctx).With(
		"user_id", in.UserID,
		"preferred_tone", tone,
	)
	log.Info("starting new session")

	session := &domain.Session{
		ID:            domain.SessionID(s.newID()),
		UserID:        in.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
		PreferredTone: tone,
		Title:         in.Title,
	}

	if err := s.sessionStore.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	welcome := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: session.ID,
		Author:    domain.RoleAssistant,
		Text:      WelcomeMessage,
		CreatedAt: now,
	}

	if err := s.messageStore.AppendMessage(ctx, welcome); err != nil {
		log.Error("failed to append welcome message", "error", err)
		return nil, fmt.Errorf("storing welcome message: %w", err)
	}

	log.Info("session started", "session_id", session.ID)

	return &StartSessionOutput{
		Session: session,
		Welcome: welcome,
	}, nil
}

type SendMessageInput struct {
	SessionID domain.SessionID
	UserID    domain.UserID // optional; when set it must own the session
	Text      string
}

type SendMessageOutput struct {
	UserMessage      *domain.Message
	AssistantMessage *domain.Message
	Triage           domain.TriageResult
}

func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	session, err := s.sessionStore.GetSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	if in.UserID != "" && in.UserID != session.UserID {
		return nil, fmt.Errorf("session %s for user %s: %w", in.SessionID, in.UserID, domain.ErrSessionNotFound)
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"user_id", session.UserID,
		"tone", session.PreferredTone,
	)
	log.Info("sending message", "length", len(in.Text))

	// History is what came before this message.
	history, err := s.messageStore.GetMessagesBySession(ctx, session.ID, s.historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, fmt.Errorf("loading history: %w", err)
	}

	result := s.triage.Triage(ctx, in.Text, domain.ToTurns(history), string(session.PreferredTone))

	userMsg := &domain.Message{
		ID:              domain.MessageID(s.newID()),
		SessionID:       session.ID,
		Author:          domain.RoleUser,
		Text:            in.Text,
		CreatedAt:       s.now(),
		DetectedEmotion: result.DetectedEmotion,
		IsCrisis:        result.IsCrisis,
	}
	if err := s.messageStore.AppendMessage(ctx, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, fmt.Errorf("storing user message: %w", err)
	}

	assistantMsg := &domain.Message{
		ID:        domain.MessageID(s.newID()),
		SessionID: session.ID,
		Author:    domain.RoleAssistant,
		Text:      result.ResponseText,
		CreatedAt: s.now(),
	}
	if err := s.messageStore.AppendMessage(ctx, assistantMsg); err != nil {
		log.Error("failed to append assistant message", "error", err)
		return nil, fmt.Errorf("storing assistant message: %w", err)
	}

	if result.IsCrisis {
		entry := &domain.CrisisLog{
			ID:            domain.CrisisLogID(s.newID()),
			UserID:        session.UserID,
			SessionID:     session.ID,
			MessageID:     userMsg.ID,
			TriggerPhrase: in.Text,
			ResponseGiven: result.ResponseText,
			CreatedAt:     userMsg.CreatedAt,
		}
		if err := s.crisisStore.AppendCrisisLog(ctx, entry); err != nil {
			log.Error("failed to record crisis log", "error", err)
			return nil, fmt.Errorf("recording crisis log: %w", err)
		}
		log.Warn("crisis recorded", "crisis_log_id", entry.ID)
	}

	if session.Title == "" {
		session.Title = truncateRunes(in.Text, titleMaxRunes)
	}
	session.UpdatedAt = s.now()
	if err := s.sessionStore.UpdateSession(ctx, session); err != nil {
		log.Error("failed to update session", "error", err)
		return nil, fmt.Errorf("updating session: %w", err)
	}

	log.Info("send message completed",
		"source", result.ResponseSource,
		"is_crisis", result.IsCrisis)

	return &SendMessageOutput{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Triage:           result,
	}, nil
}

func (s *Service) GetSessionTimeline(
	ctx context.Context,
	sessionID domain.SessionID,
	limit int,
) (*domain.Session, []*domain.Message, error) {

	log := observability.LoggerFromContext(ctx).With(
		"session_id", sessionID,
		"limit", limit,
	)

	session, err := s.sessionStore.GetSession(ctx, sessionID)
	if err != nil {
		log.Warn("failed to get session", "error", err)
		return nil, nil, err
	}

	msgs, err := s.messageStore.GetMessagesBySession(ctx, sessionID, limit)
	if err != nil {
		log.Error("failed to get messages", "error", err)
		return nil, nil, fmt.Errorf("loading messages: %w", err)
	}

	log.Info("fetched session timeline", "message_count", len(msgs))

	return session, msgs, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	sessions, err := s.sessionStore.ListSessionsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return sessions, nil
}

// DeleteHistory removes every session of the user and their messages.
// Crisis logs are kept. It returns how many sessions were removed.
func (s *Service) DeleteHistory(ctx context.Context, userID domain.UserID) (int, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	ids, err := s.sessionStore.DeleteSessionsByUser(ctx, userID)
	if err != nil {
		log.Error("failed to delete sessions", "error", err)
		return 0, fmt.Errorf("deleting sessions: %w", err)
	}

	for _, id := range ids {
		if err := s.messageStore.DeleteMessagesBySession(ctx, id); err != nil {
			log.Error("failed to delete messages", "session_id", id, "error", err)
			return 0, fmt.Errorf("deleting messages of %s: %w", id, err)
		}
	}

	log.Info("history deleted", "sessions", len(ids))
	return len(ids), nil
}

// ListCrisisLogs returns the user's recorded crises, oldest first.
func (s *Service) ListCrisisLogs(ctx context.Context, userID domain.UserID, limit int) ([]*domain.CrisisLog, error) {
	logs, err := s.crisisStore.ListCrisisLogsByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing crisis logs: %w", err)
	}
	return logs, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
