package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (DOST_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDoc(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) messagesCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDoc(sessionID).Collection("messages")
}

func (s *Store) crisisCol() *firestore.CollectionRef {
	return s.client.Collection("crisis_logs")
}

func (s *Store) journalCol() *firestore.CollectionRef {
	return s.client.Collection("journal_entries")
}

// each runs fn for every document the query yields.
func each(ctx context.Context, q firestore.Query, fn func(*firestore.DocumentSnapshot) error) error {
	iter := q.Documents(ctx)
	defer iter.Stop()

	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				return nil
			}
			return err
		}
		if err := fn(snap); err != nil {
			return err
		}
	}
}

// reverse flips a newest-first page back to chronological order.
func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	UserID        string    `firestore:"user_id"`
	Title         string    `firestore:"title"`
	PreferredTone string    `firestore:"preferred_tone"`
	CreatedAt     time.Time `firestore:"created_at"`
	UpdatedAt     time.Time `firestore:"updated_at"`
}

type messageDoc struct {
	SessionID       string    `firestore:"session_id"`
	Author          string    `firestore:"author"`
	Text            string    `firestore:"text"`
	CreatedAt       time.Time `firestore:"created_at"`
	DetectedEmotion string    `firestore:"detected_emotion"`
	IsCrisis        bool      `firestore:"is_crisis"`
}

type crisisDoc struct {
	UserID        string    `firestore:"user_id"`
	SessionID     string    `firestore:"session_id"`
	MessageID     string    `firestore:"message_id"`
	TriggerPhrase string    `firestore:"trigger_phrase"`
	ResponseGiven string    `firestore:"response_given"`
	CreatedAt     time.Time `firestore:"created_at"`
}

type journalDoc struct {
	UserID    string    `firestore:"user_id"`
	Title     string    `firestore:"title"`
	Content   string    `firestore:"content"`
	Mood      string    `firestore:"mood"`
	IsCrisis  bool      `firestore:"is_crisis"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`

	AIReflectionEnabled bool   `firestore:"ai_reflection_enabled"`
	AIReflection        string `firestore:"ai_reflection"`
}

func (d sessionDoc) toDomain(id string) *domain.Session {
	return &domain.Session{
		ID:            domain.SessionID(id),
		UserID:        domain.UserID(d.UserID),
		Title:         d.Title,
		PreferredTone: domain.Tone(d.PreferredTone),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	doc := sessionDoc{
		UserID:        string(session.UserID),
		Title:         session.Title,
		PreferredTone: string(session.PreferredTone),
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}

	_, err := s.sessionDoc(session.ID).Create(ctx, doc)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("create session %s: %w", session.ID, domain.ErrSessionExists)
		}
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	_, err := s.sessionDoc(session.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: session.Title},
		{Path: "preferred_tone", Value: string(session.PreferredTone)},
		{Path: "updated_at", Value: session.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("update session %s: %w", session.ID, domain.ErrSessionNotFound)
		}
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	snap, err := s.sessionDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("get session %s: %w", id, domain.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}
	return doc.toDomain(string(id)), nil
}

func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	q := s.sessionsCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []*domain.Session{}
	err := each(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var doc sessionDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode sessionDoc: %w", err)
		}
		out = append(out, doc.toDomain(snap.Ref.ID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore ListSessionsByUser: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteSessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.SessionID, error) {
	q := s.sessionsCol().Where("user_id", "==", string(userID))

	var refs []*firestore.DocumentRef
	err := each(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		refs = append(refs, snap.Ref)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore DeleteSessionsByUser: %w", err)
	}

	deleted := make([]domain.SessionID, 0, len(refs))
	if err := s.deleteAll(ctx, refs); err != nil {
		return nil, fmt.Errorf("firestore DeleteSessionsByUser: %w", err)
	}
	for _, ref := range refs {
		deleted = append(deleted, domain.SessionID(ref.ID))
	}
	return deleted, nil
}

func (s *Store) deleteAll(ctx context.Context, refs []*firestore.DocumentRef) error {
	if len(refs) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			return err
		}
	}
	return nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	doc := messageDoc{
		SessionID:       string(msg.SessionID),
		Author:          string(msg.Author),
		Text:            msg.Text,
		CreatedAt:       msg.CreatedAt,
		DetectedEmotion: string(msg.DetectedEmotion),
		IsCrisis:        msg.IsCrisis,
	}

	_, err := s.messagesCol(msg.SessionID).Doc(string(msg.ID)).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("firestore AppendMessage: %w", err)
	}
	return nil
}

func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	q := s.messagesCol(sessionID).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []*domain.Message{}
	err := each(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var doc messageDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode messageDoc: %w", err)
		}
		out = append(out, &domain.Message{
			ID:              domain.MessageID(snap.Ref.ID),
			SessionID:       sessionID,
			Author:          domain.Role(doc.Author),
			Text:            doc.Text,
			CreatedAt:       doc.CreatedAt,
			DetectedEmotion: domain.Emotion(doc.DetectedEmotion),
			IsCrisis:        doc.IsCrisis,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore GetMessagesBySession: %w", err)
	}

	reverse(out)
	return out, nil
}

func (s *Store) DeleteMessagesBySession(ctx context.Context, sessionID domain.SessionID) error {
	refs, err := s.messagesCol(sessionID).DocumentRefs(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("firestore DeleteMessagesBySession: %w", err)
	}
	if err := s.deleteAll(ctx, refs); err != nil {
		return fmt.Errorf("firestore DeleteMessagesBySession: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// CrisisLogStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendCrisisLog(ctx context.Context, entry *domain.CrisisLog) error {
	doc := crisisDoc{
		UserID:        string(entry.UserID),
		SessionID:     string(entry.SessionID),
		MessageID:     string(entry.MessageID),
		TriggerPhrase: entry.TriggerPhrase,
		ResponseGiven: entry.ResponseGiven,
		CreatedAt:     entry.CreatedAt,
	}

	if _, err := s.crisisCol().Doc(string(entry.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendCrisisLog: %w", err)
	}
	return nil
}

func (s *Store) ListCrisisLogsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.CrisisLog, error) {
	q := s.crisisCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []*domain.CrisisLog{}
	err := each(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var doc crisisDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode crisisDoc: %w", err)
		}
		out = append(out, &domain.CrisisLog{
			ID:            domain.CrisisLogID(snap.Ref.ID),
			UserID:        domain.UserID(doc.UserID),
			SessionID:     domain.SessionID(doc.SessionID),
			MessageID:     domain.MessageID(doc.MessageID),
			TriggerPhrase: doc.TriggerPhrase,
			ResponseGiven: doc.ResponseGiven,
			CreatedAt:     doc.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore ListCrisisLogsByUser: %w", err)
	}

	reverse(out)
	return out, nil
}

// ─────────────────────────────────────────
// JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	doc := journalDoc{
		UserID:    string(entry.UserID),
		Title:     entry.Title,
		Content:   entry.Content,
		Mood:      string(entry.Mood),
		IsCrisis:  entry.IsCrisis,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,

		AIReflectionEnabled: entry.AIReflectionEnabled,
		AIReflection:        entry.AIReflection,
	}

	if _, err := s.journalCol().Doc(string(entry.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendJournalEntry: %w", err)
	}
	return nil
}

func (s *Store) ListJournalEntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	q := s.journalCol().Where("user_id", "==", string(userID)).OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	out := []*domain.JournalEntry{}
	err := each(ctx, q, func(snap *firestore.DocumentSnapshot) error {
		var doc journalDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode journalDoc: %w", err)
		}
		out = append(out, &domain.JournalEntry{
			ID:        domain.JournalEntryID(snap.Ref.ID),
			UserID:    domain.UserID(doc.UserID),
			Title:     doc.Title,
			Content:   doc.Content,
			Mood:      domain.Emotion(doc.Mood),
			IsCrisis:  doc.IsCrisis,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,

			AIReflectionEnabled: doc.AIReflectionEnabled,
			AIReflection:        doc.AIReflection,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("firestore ListJournalEntriesByUser: %w", err)
	}

	reverse(out)
	return out, nil
}
