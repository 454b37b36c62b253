// Package journal stores free-form entries written outside the chat.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/dost-companion/internal/app/gateway"
	"github.com/PabloGalante/dost-companion/internal/app/triage"
	"github.com/PabloGalante/dost-companion/internal/domain"
	"github.com/PabloGalante/dost-companion/internal/observability"
)

const defaultListLimit = 20

// ReflectionFallback is stored when no backend could write a reflection.
const ReflectionFallback = "Thank you for sharing your thoughts. Journaling is a wonderful practice for self-reflection."

var ErrEmptyContent = errors.New("journal entry content is empty")

// Service holds the logic of writing and reading journal entries
type Service struct {
	store   domain.JournalStore
	replies triage.ReplyGenerator
	now     func() time.Time
}

// NewService creates a journal service from a JournalStore. replies writes
// the reflections; when nil every reflection is ReflectionFallback.
func NewService(store domain.JournalStore, replies triage.ReplyGenerator) *Service {
	return &Service{
		store:   store,
		replies: replies,
		now:     time.Now,
	}
}

type AddEntryInput struct {
	UserID  domain.UserID
	Title   string
	Content string
	Mood    domain.Emotion // detected from Content when empty

	// Reflect asks for a short supportive reflection on the entry.
	Reflect bool
}

// AddEntry stores a new entry. The mood is detected from the content unless
// the user picked one, and crisis phrasing flags the entry.
func (s *Service) AddEntry(ctx context.Context, in AddEntryInput) (*domain.JournalEntry, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, ErrEmptyContent
	}

	mood := in.Mood
	if mood == "" {
		mood = triage.DetectEmotion(in.Content)
	}

	now := s.now()
	entry := &domain.JournalEntry{
		ID:        domain.JournalEntryID(uuid.NewString()),
		UserID:    in.UserID,
		CreatedAt: now,
		UpdatedAt: now,
		Title:     in.Title,
		Content:   in.Content,
		Mood:      mood,
		IsCrisis:  triage.DetectCrisis(in.Content),

		AIReflectionEnabled: in.Reflect,
	}
	if in.Reflect {
		entry.AIReflection = s.reflect(ctx, entry)
	}

	if err := s.store.AppendJournalEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("storing journal entry: %w", err)
	}

	log := observability.LoggerFromContext(ctx)
	log.Info("journal entry added",
		"user_id", in.UserID,
		"entry_id", entry.ID,
		"mood", mood)
	if entry.IsCrisis {
		log.Warn("journal entry flagged as crisis", "user_id", in.UserID, "entry_id", entry.ID)
	}

	return entry, nil
}

// reflect writes the reflection for entry. Crisis entries get the crisis
// response and never reach a provider.
func (s *Service) reflect(ctx context.Context, entry *domain.JournalEntry) string {
	if entry.IsCrisis {
		return triage.CrisisResponse
	}
	if s.replies == nil {
		return ReflectionFallback
	}

	history := []domain.Turn{{Role: domain.RoleUser, Content: reflectionPrompt(entry.Content)}}
	ec := &domain.EmotionContext{
		Emotion:     entry.Mood,
		StressLevel: triage.AnalyzeStress(entry.Content).Level,
	}

	reply := s.replies.GenerateReply(ctx, history, domain.ToneCalm, ec)
	if reply.Source == gateway.SourceFallback || strings.TrimSpace(reply.Text) == "" {
		observability.LoggerFromContext(ctx).Warn("journal reflection unavailable, using fallback",
			"entry_id", entry.ID)
		return ReflectionFallback
	}
	return strings.TrimSpace(reply.Text)
}

func reflectionPrompt(content string) string {
	return `The user has written the following journal entry. Provide a brief, supportive reflection (2-3 sentences) that:
1. Acknowledges their feelings
2. Offers a gentle observation or insight
3. Encourages continued self-reflection

Journal entry:
` + content + `

Provide only the reflection, no preamble.`
}

// GetUserJournal returns the last `limit` journal entries for a user
// If limit <= 0, a reasonable default value is used.
func (s *Service) GetUserJournal(
	ctx context.Context,
	userID domain.UserID,
	limit int,
) ([]*domain.JournalEntry, error) {

	if limit <= 0 {
		limit = defaultListLimit
	}

	entries, err := s.store.ListJournalEntriesByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing journal entries: %w", err)
	}
	return entries, nil
}
