package memory

import (
	"context"
	"sync"

	"github.com/PabloGalante/dost-companion/internal/domain"
)

// JournalStore is a simple in-memory implementation of domain.JournalStore.
// It is NOT persistent and is only suitable for development / local mode.
type JournalStore struct {
	mu     sync.RWMutex
	byUser map[domain.UserID][]*domain.JournalEntry
}

func NewJournalStore() *JournalStore {
	return &JournalStore{
		byUser: make(map[domain.UserID][]*domain.JournalEntry),
	}
}

func (s *JournalStore) AppendJournalEntry(_ context.Context, entry *domain.JournalEntry) error {
	if entry == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *entry
	s.byUser[entry.UserID] = append(s.byUser[entry.UserID], &cp)
	return nil
}

// ListJournalEntriesByUser returns the last `limit` entries for a user,
// oldest first. If limit <= 0, returns all.
func (s *JournalStore) ListJournalEntriesByUser(_ context.Context, userID domain.UserID, limit int) ([]*domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lastN(s.byUser[userID], limit), nil
}

func lastN[T any](items []*T, limit int) []*T {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}

	selected := items[len(items)-limit:]
	out := make([]*T, len(selected))
	for i, it := range selected {
		cp := *it
		out[i] = &cp
	}
	return out
}
