package registration

import (
	"context"
	"sort"
	"strings"
	"sync"

	"panchayat/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]Request
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[string]Request)}
}

func (s *MemoryStore) Create(_ context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = req
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return Request{}, sentinel.ErrNotFound
	}
	return req, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var newest *Request
	for _, req := range s.requests {
		if !strings.EqualFold(req.Email, email) {
			continue
		}
		if newest == nil || req.SubmittedAt.After(newest.SubmittedAt) {
			r := req
			newest = &r
		}
	}
	if newest == nil {
		return Request{}, sentinel.ErrNotFound
	}
	return *newest, nil
}

func (s *MemoryStore) ExistsByEmailOrAadhaar(_ context.Context, email, aadhaar string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, req := range s.requests {
		if strings.EqualFold(req.Email, email) || req.AadhaarNumber == aadhaar {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) Update(_ context.Context, req Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[req.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.requests[req.ID] = req
	return nil
}

func (s *MemoryStore) List(_ context.Context, status string) ([]Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var requests []Request
	for _, req := range s.requests {
		if status != "" && req.Status != status {
			continue
		}
		requests = append(requests, req)
	}
	sort.Slice(requests, func(i, j int) bool {
		return requests[i].SubmittedAt.After(requests[j].SubmittedAt)
	})
	return requests, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context, status string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, req := range s.requests {
		if req.Status == status {
			count++
		}
	}
	return count, nil
}
