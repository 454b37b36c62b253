package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

type CrisisLogStore struct {
	mu     sync.RWMutex
	byUser map[domain.UserID][]*domain.CrisisLog
}

func NewCrisisLogStore() *CrisisLogStore {
	return &CrisisLogStore{
		byUser: make(map[domain.UserID][]*domain.CrisisLog),
	}
}

func (s *CrisisLogStore) AppendCrisisLog(_ context.Context, entry *domain.CrisisLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.byUser[entry.UserID] = append(s.byUser[entry.UserID], &cp)
	return nil
}

func (s *CrisisLogStore) ListCrisisLogsByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.CrisisLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.byUser[userID], limit), nil
}
