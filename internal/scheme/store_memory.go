package scheme

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"panchayat/pkg/platform/sentinel"
)

type MemoryStore struct {
	mu           sync.RWMutex
	schemes      map[string]Scheme
	applications map[string]Application
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		schemes:      make(map[string]Scheme),
		applications: make(map[string]Application),
	}
}

func (s *MemoryStore) Create(_ context.Context, scheme Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schemes[scheme.ID] = scheme
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	scheme, ok := s.schemes[id]
	if !ok {
		return Scheme{}, sentinel.ErrNotFound
	}
	return scheme, nil
}

func (s *MemoryStore) Update(_ context.Context, scheme Scheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemes[scheme.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.schemes[scheme.ID] = scheme
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.schemes[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.schemes, id)
	for appID, a := range s.applications {
		if a.SchemeID == id {
			delete(s.applications, appID)
		}
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schemes := make([]Scheme, 0, len(s.schemes))
	for _, scheme := range s.schemes {
		schemes = append(schemes, scheme)
	}
	sortNewestFirst(schemes)
	return schemes, nil
}

func (s *MemoryStore) CreateApplication(_ context.Context, a Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[a.ID] = a
	return nil
}

func (s *MemoryStore) ListApplications(_ context.Context, schemeID string) ([]Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var apps []Application
	for _, a := range s.applications {
		if schemeID != "" && a.SchemeID != schemeID {
			continue
		}
		apps = append(apps, a)
	}
	sort.Slice(apps, func(i, j int) bool {
		if apps[i].AppliedAt.Equal(apps[j].AppliedAt) {
			return apps[i].ID < apps[j].ID
		}
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
	return apps, nil
}

func (s *MemoryStore) FundTotals(_ context.Context) (FundTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var totals FundTotals
	for _, scheme := range s.schemes {
		totals.Allocated += scheme.AllocatedFunds
		totals.Utilized += scheme.UtilizedFunds
	}
	return totals, nil
}

func (s *MemoryStore) CountApplicationsByStatus(_ context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, a := range s.applications {
		counts[a.Status]++
	}
	return counts, nil
}

func (s *MemoryStore) CountApprovedReviewedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.applications {
		if a.Status != ApplicationApproved || a.ReviewedAt == nil {
			continue
		}
		if !a.ReviewedAt.Before(from) && a.ReviewedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountApplicationsAppliedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.applications {
		if !a.AppliedAt.Before(from) && a.AppliedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountApprovedAppliedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, a := range s.applications {
		if a.Status != ApplicationApproved {
			continue
		}
		if !a.AppliedAt.Before(from) && a.AppliedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Search(_ context.Context, term string, limit int) ([]Scheme, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term = strings.ToLower(term)
	var schemes []Scheme
	for _, scheme := range s.schemes {
		if strings.Contains(strings.ToLower(scheme.SchemeName), term) ||
			strings.Contains(strings.ToLower(scheme.Description), term) {
			schemes = append(schemes, scheme)
		}
	}
	sortNewestFirst(schemes)
	if limit > 0 && len(schemes) > limit {
		schemes = schemes[:limit]
	}
	return schemes, nil
}

func sortNewestFirst(schemes []Scheme) {
	sort.Slice(schemes, func(i, j int) bool {
		if schemes[i].CreatedAt.Equal(schemes[j].CreatedAt) {
			return schemes[i].ID < schemes[j].ID
		}
		return schemes[i].CreatedAt.After(schemes[j].CreatedAt)
	})
}
