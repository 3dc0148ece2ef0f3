package complaint

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"panchayat/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu         sync.RWMutex
	complaints map[string]Complaint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{complaints: make(map[string]Complaint)}
}

func (s *MemoryStore) Create(_ context.Context, c Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complaints[c.ID] = c
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.complaints[id]
	if !ok {
		return Complaint{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) Update(_ context.Context, c Complaint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.complaints[c.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.complaints[c.ID] = c
	return nil
}

func (s *MemoryStore) List(_ context.Context, citizenID string, limit int) ([]Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var complaints []Complaint
	for _, c := range s.complaints {
		if citizenID != "" && c.CitizenID != citizenID {
			continue
		}
		complaints = append(complaints, c)
	}
	sortNewestFirst(complaints)
	if limit > 0 && len(complaints) > limit {
		complaints = complaints[:limit]
	}
	return complaints, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, c := range s.complaints {
		counts[c.Status]++
	}
	return counts, nil
}

func (s *MemoryStore) CountSubmittedBetween(_ context.Context, from, to time.Time) (int, error) {
	return s.countInWindow(from, to, func(Complaint) bool { return true })
}

func (s *MemoryStore) CountResolvedSubmittedBetween(_ context.Context, from, to time.Time) (int, error) {
	return s.countInWindow(from, to, func(c Complaint) bool {
		return c.Status == StatusResolved || c.Status == StatusClosed
	})
}

func (s *MemoryStore) CountOpenSubmittedBetween(_ context.Context, from, to time.Time) (int, error) {
	return s.countInWindow(from, to, func(c Complaint) bool {
		return c.Status == StatusOpen
	})
}

func (s *MemoryStore) countInWindow(from, to time.Time, match func(Complaint) bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, c := range s.complaints {
		if c.SubmittedAt.Before(from) || !c.SubmittedAt.Before(to) {
			continue
		}
		if match(c) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Search(_ context.Context, term string, citizenIDs []string, limit int) ([]Complaint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term = strings.ToLower(term)
	owners := make(map[string]struct{}, len(citizenIDs))
	for _, id := range citizenIDs {
		owners[id] = struct{}{}
	}
	var complaints []Complaint
	for _, c := range s.complaints {
		_, owned := owners[c.CitizenID]
		if owned ||
			strings.Contains(strings.ToLower(c.ComplaintNumber), term) ||
			strings.Contains(strings.ToLower(c.Subject), term) ||
			strings.Contains(strings.ToLower(c.ComplaintType), term) ||
			strings.Contains(strings.ToLower(c.Description), term) {
			complaints = append(complaints, c)
		}
	}
	sortNewestFirst(complaints)
	if limit > 0 && len(complaints) > limit {
		complaints = complaints[:limit]
	}
	return complaints, nil
}

func sortNewestFirst(complaints []Complaint) {
	sort.Slice(complaints, func(i, j int) bool {
		if complaints[i].SubmittedAt.Equal(complaints[j].SubmittedAt) {
			return complaints[i].ID < complaints[j].ID
		}
		return complaints[i].SubmittedAt.After(complaints[j].SubmittedAt)
	})
}
