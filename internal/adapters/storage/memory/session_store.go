package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domain.SessionID]*domain.Session),
	}
}

func (s *SessionStore) CreateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("create session %s: %w", session.ID, domain.ErrSessionExists)
	}

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *SessionStore) UpdateSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[session.ID]; !exists {
		return fmt.Errorf("update session %s: %w", session.ID, domain.ErrSessionNotFound)
	}

	cp := *session
	s.sessions[session.ID] = &cp
	return nil
}

func (s *SessionStore) GetSession(_ context.Context, id domain.SessionID) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session %s: %w", id, domain.ErrSessionNotFound)
	}

	cp := *sess
	return &cp, nil
}

// ListSessionsByUser returns the user's sessions, newest first.
func (s *SessionStore) ListSessionsByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*domain.Session{}
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			cp := *sess
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *SessionStore) DeleteSessionsByUser(_ context.Context, userID domain.UserID) ([]domain.SessionID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted []domain.SessionID
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			deleted = append(deleted, id)
			delete(s.sessions, id)
		}
	}
	return deleted, nil
}
