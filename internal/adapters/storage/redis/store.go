// Package redis persists sessions, messages, crisis logs and journal
// entries as JSON documents in Redis. Every key carries the configured TTL,
// refreshed on write.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

const defaultPrefix = "dost:"

type Store struct {
	client goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore connects to redisURL (redis://[:password@]host:port/db) and
// verifies the connection with PING.
func NewStore(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewStoreWithClient(client, ttl), nil
}

// NewStoreWithClient wraps an existing client. ttl <= 0 disables expiry.
func NewStoreWithClient(client goredis.UniversalClient, ttl time.Duration) *Store {
	return &Store{client: client, prefix: defaultPrefix, ttl: ttl}
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Keys
// ─────────────────────────────────────────

func (s *Store) sessionKey(id domain.SessionID) string {
	return s.prefix + "session:" + string(id)
}

func (s *Store) userSessionsKey(userID domain.UserID) string {
	return s.prefix + "user:" + string(userID) + ":sessions"
}

func (s *Store) messagesKey(id domain.SessionID) string {
	return s.prefix + "session:" + string(id) + ":messages"
}

func (s *Store) crisisKey(userID domain.UserID) string {
	return s.prefix + "user:" + string(userID) + ":crisis_logs"
}

func (s *Store) journalKey(userID domain.UserID) string {
	return s.prefix + "user:" + string(userID) + ":journal"
}

// ─────────────────────────────────────────
// Records
// ─────────────────────────────────────────

type sessionRecord struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	PreferredTone string    `json:"preferred_tone"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type messageRecord struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Author          string    `json:"author"`
	Text            string    `json:"text"`
	CreatedAt       time.Time `json:"created_at"`
	DetectedEmotion string    `json:"detected_emotion,omitempty"`
	IsCrisis        bool      `json:"is_crisis"`
}

func toSessionRecord(sess *domain.Session) sessionRecord {
	return sessionRecord{
		ID:            string(sess.ID),
		UserID:        string(sess.UserID),
		Title:         sess.Title,
		PreferredTone: string(sess.PreferredTone),
		CreatedAt:     sess.CreatedAt,
		UpdatedAt:     sess.UpdatedAt,
	}
}

func (r sessionRecord) toDomain() *domain.Session {
	return &domain.Session{
		ID:            domain.SessionID(r.ID),
		UserID:        domain.UserID(r.UserID),
		Title:         r.Title,
		PreferredTone: domain.Tone(r.PreferredTone),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

// CreateSession writes the session and its entry in the user's index in a
// single MULTI guarded by WATCH. Redis does not roll back a failed
// transaction, so a failed index write removes the session key again.
func (s *Store) CreateSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(toSessionRecord(session))
	if err != nil {
		return fmt.Errorf("redis CreateSession encode: %w", err)
	}

	key := s.sessionKey(session.ID)
	idx := s.userSessionsKey(session.UserID)
	exists := fmt.Errorf("create session %s: %w", session.ID, domain.ErrSessionExists)

	err = s.client.Watch(ctx, func(tx *goredis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return exists
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			pipe.ZAdd(ctx, idx, goredis.Z{
				Score:  float64(session.CreatedAt.UnixNano()),
				Member: string(session.ID),
			})
			s.expire(ctx, pipe, idx)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrSessionExists):
		return err
	case errors.Is(err, goredis.TxFailedErr):
		// someone else created the key between WATCH and EXEC
		return exists
	}

	if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
		return fmt.Errorf("redis CreateSession: %w (cleanup: %v)", err, delErr)
	}
	return fmt.Errorf("redis CreateSession: %w", err)
}

func (s *Store) UpdateSession(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(toSessionRecord(session))
	if err != nil {
		return fmt.Errorf("redis UpdateSession encode: %w", err)
	}

	ok, err := s.client.SetXX(ctx, s.sessionKey(session.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis UpdateSession: %w", err)
	}
	if !ok {
		return fmt.Errorf("update session %s: %w", session.ID, domain.ErrSessionNotFound)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (*domain.Session, error) {
	data, err := s.client.Get(ctx, s.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("get session %s: %w", id, domain.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("redis GetSession: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("redis GetSession decode: %w", err)
	}
	return rec.toDomain(), nil
}

// ListSessionsByUser returns the user's sessions, newest first. Index
// entries whose session expired are skipped.
func (s *Store) ListSessionsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	ids, err := s.client.ZRevRange(ctx, s.userSessionsKey(userID), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ListSessionsByUser: %w", err)
	}
	out := []*domain.Session{}
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.sessionKey(domain.SessionID(id))
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis ListSessionsByUser: %w", err)
	}

	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var rec sessionRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("decode session record: %w", err)
		}
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (s *Store) DeleteSessionsByUser(ctx context.Context, userID domain.UserID) ([]domain.SessionID, error) {
	idx := s.userSessionsKey(userID)
	ids, err := s.client.ZRange(ctx, idx, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis DeleteSessionsByUser: %w", err)
	}

	keys := []string{idx}
	deleted := make([]domain.SessionID, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.sessionKey(domain.SessionID(id)))
		deleted = append(deleted, domain.SessionID(id))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return nil, fmt.Errorf("redis DeleteSessionsByUser: %w", err)
	}
	return deleted, nil
}

// ─────────────────────────────────────────
// MessageStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendMessage(ctx context.Context, msg *domain.Message) error {
	rec := messageRecord{
		ID:              string(msg.ID),
		SessionID:       string(msg.SessionID),
		Author:          string(msg.Author),
		Text:            msg.Text,
		CreatedAt:       msg.CreatedAt,
		DetectedEmotion: string(msg.DetectedEmotion),
		IsCrisis:        msg.IsCrisis,
	}
	return s.push(ctx, s.messagesKey(msg.SessionID), rec)
}

func (s *Store) GetMessagesBySession(ctx context.Context, sessionID domain.SessionID, limit int) ([]*domain.Message, error) {
	var recs []messageRecord
	if err := s.tail(ctx, s.messagesKey(sessionID), limit, &recs); err != nil {
		return nil, fmt.Errorf("redis GetMessagesBySession: %w", err)
	}

	out := make([]*domain.Message, 0, len(recs))
	for _, r := range recs {
		out = append(out, &domain.Message{
			ID:              domain.MessageID(r.ID),
			SessionID:       domain.SessionID(r.SessionID),
			Author:          domain.Role(r.Author),
			Text:            r.Text,
			CreatedAt:       r.CreatedAt,
			DetectedEmotion: domain.Emotion(r.DetectedEmotion),
			IsCrisis:        r.IsCrisis,
		})
	}
	return out, nil
}

func (s *Store) DeleteMessagesBySession(ctx context.Context, sessionID domain.SessionID) error {
	if err := s.client.Del(ctx, s.messagesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis DeleteMessagesBySession: %w", err)
	}
	return nil
}

// ─────────────────────────────────────────
// CrisisLogStore / JournalStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendCrisisLog(ctx context.Context, entry *domain.CrisisLog) error {
	return s.push(ctx, s.crisisKey(entry.UserID), entry)
}

func (s *Store) ListCrisisLogsByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.CrisisLog, error) {
	var out []*domain.CrisisLog
	if err := s.tail(ctx, s.crisisKey(userID), limit, &out); err != nil {
		return nil, fmt.Errorf("redis ListCrisisLogsByUser: %w", err)
	}
	return out, nil
}

func (s *Store) AppendJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	return s.push(ctx, s.journalKey(entry.UserID), entry)
}

func (s *Store) ListJournalEntriesByUser(ctx context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	var out []*domain.JournalEntry
	if err := s.tail(ctx, s.journalKey(userID), limit, &out); err != nil {
		return nil, fmt.Errorf("redis ListJournalEntriesByUser: %w", err)
	}
	return out, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) push(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	s.expire(ctx, pipe, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis push %s: %w", key, err)
	}
	return nil
}

// tail decodes the last limit JSON items of a list into out, a pointer to
// a slice. limit <= 0 reads the whole list.
func (s *Store) tail(ctx context.Context, key string, limit int, out any) error {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}

	items, err := s.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return err
	}

	buf := make([]byte, 0, 2+len(items)*64)
	buf = append(buf, '[')
	for i, it := range items {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, it...)
	}
	buf = append(buf, ']')
	return json.Unmarshal(buf, out)
}

func (s *Store) expire(ctx context.Context, pipe goredis.Pipeliner, key string) {
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}
