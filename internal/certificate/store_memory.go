package certificate

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"panchayat/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu    sync.RWMutex
	certs map[string]Certificate
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{certs: make(map[string]Certificate)}
}

func (s *MemoryStore) Create(_ context.Context, cert Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certs[cert.ID] = cert
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cert, ok := s.certs[id]
	if !ok {
		return Certificate{}, sentinel.ErrNotFound
	}
	return cert, nil
}

func (s *MemoryStore) Update(_ context.Context, cert Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[cert.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.certs[cert.ID] = cert
	return nil
}

func (s *MemoryStore) List(_ context.Context, citizenID string, limit int) ([]Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var certs []Certificate
	for _, cert := range s.certs {
		if citizenID != "" && cert.CitizenID != citizenID {
			continue
		}
		certs = append(certs, cert)
	}
	sortNewestFirst(certs)
	if limit > 0 && len(certs) > limit {
		certs = certs[:limit]
	}
	return certs, nil
}

func (s *MemoryStore) CountByStatus(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, cert := range s.certs {
		counts[cert.Status]++
	}
	return counts, nil
}

func (s *MemoryStore) CountApprovedProcessedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, cert := range s.certs {
		if cert.Status != StatusApproved || cert.ProcessedAt == nil {
			continue
		}
		if !cert.ProcessedAt.Before(from) && cert.ProcessedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) DistinctCitizens(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	citizens := make(map[string]struct{})
	for _, cert := range s.certs {
		citizens[cert.CitizenID] = struct{}{}
	}
	return len(citizens), nil
}

func (s *MemoryStore) Search(_ context.Context, term string, citizenIDs []string, limit int) ([]Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term = strings.ToLower(term)
	owners := make(map[string]struct{}, len(citizenIDs))
	for _, id := range citizenIDs {
		owners[id] = struct{}{}
	}
	var certs []Certificate
	for _, cert := range s.certs {
		_, owned := owners[cert.CitizenID]
		if owned ||
			strings.Contains(strings.ToLower(cert.ApplicationNumber), term) ||
			strings.Contains(strings.ToLower(cert.CertificateType), term) {
			certs = append(certs, cert)
		}
	}
	sortNewestFirst(certs)
	if limit > 0 && len(certs) > limit {
		certs = certs[:limit]
	}
	return certs, nil
}

func sortNewestFirst(certs []Certificate) {
	sort.Slice(certs, func(i, j int) bool {
		if certs[i].SubmittedAt.Equal(certs[j].SubmittedAt) {
			return certs[i].ID < certs[j].ID
		}
		return certs[i].SubmittedAt.After(certs[j].SubmittedAt)
	})
}
