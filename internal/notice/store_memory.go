package notice

import (
	"context"
	"sort"
	"strings"
	"sync"

	"panchayat/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu      sync.RWMutex
	notices map[string]Notice
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notices: make(map[string]Notice)}
}

func (s *MemoryStore) Create(_ context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices[n.ID] = n
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.notices[id]
	if !ok {
		return Notice{}, sentinel.ErrNotFound
	}
	return n, nil
}

func (s *MemoryStore) Update(_ context.Context, n Notice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notices[n.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.notices[n.ID] = n
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notices[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.notices, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, publishedOnly bool) ([]Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var notices []Notice
	for _, n := range s.notices {
		if publishedOnly && !n.IsPublished {
			continue
		}
		notices = append(notices, n)
	}
	sortNewestFirst(notices)
	return notices, nil
}

func (s *MemoryStore) Search(_ context.Context, term string, limit int) ([]Notice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term = strings.ToLower(term)
	var notices []Notice
	for _, n := range s.notices {
		if strings.Contains(strings.ToLower(n.Title), term) ||
			strings.Contains(strings.ToLower(n.Content), term) {
			notices = append(notices, n)
		}
	}
	sortNewestFirst(notices)
	if limit > 0 && len(notices) > limit {
		notices = notices[:limit]
	}
	return notices, nil
}

func sortNewestFirst(notices []Notice) {
	sort.Slice(notices, func(i, j int) bool {
		if notices[i].CreatedAt.Equal(notices[j].CreatedAt) {
			return notices[i].ID < notices[j].ID
		}
		return notices[i].CreatedAt.After(notices[j].CreatedAt)
	})
}
