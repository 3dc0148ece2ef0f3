package notification

import (
	"context"
	"sort"
	"sync"

	"panchayat/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string]Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]Notification)}
}

func (s *MemoryStore) Create(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[n.ID] = n
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.rows[id]
	if !ok {
		return Notification{}, sentinel.ErrNotFound
	}
	return n, nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []Notification
	for _, n := range s.rows {
		if n.UserID == userID {
			rows = append(rows, n)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *MemoryStore) MarkRead(_ context.Context, id string) (Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.rows[id]
	if !ok {
		return Notification{}, sentinel.ErrNotFound
	}
	n.IsRead = true
	s.rows[id] = n
	return n, nil
}

func (s *MemoryStore) MarkAllRead(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, n := range s.rows {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			s.rows[id] = n
		}
	}
	return nil
}
