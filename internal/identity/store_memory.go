package identity

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"panchayat/pkg/platform/sentinel"
)

// MemoryStore keeps users in a map. It backs tests and database-less runs.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]User)}
}

func (s *MemoryStore) Create(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return User{}, sentinel.ErrNotFound
	}
	return user, nil
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return User{}, sentinel.ErrNotFound
}

func (s *MemoryStore) Update(_ context.Context, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.users[user.ID] = user
	return nil
}

func (s *MemoryStore) SetActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	user.IsActive = active
	s.users[id] = user
	return nil
}

func (s *MemoryStore) List(_ context.Context, filter ListFilter) ([]User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []User
	for _, user := range s.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Query != "" && !matchesQuery(user, filter.Query) {
			continue
		}
		matched = append(matched, user)
	}
	sortNewestFirst(matched)

	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *MemoryStore) ListByRole(ctx context.Context, role Role) ([]User, error) {
	users, _, err := s.List(ctx, ListFilter{Role: role})
	return users, err
}

func (s *MemoryStore) Refs(_ context.Context, ids []string) (map[string]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	refs := make(map[string]Ref, len(ids))
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			refs[id] = Ref{FullName: user.FullName, Email: user.Email}
		}
	}
	return refs, nil
}

func (s *MemoryStore) CountCitizens(_ context.Context, activeOnly bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Role != RoleCitizen {
			continue
		}
		if activeOnly && !user.IsActive {
			continue
		}
		count++
	}
	return count, nil
}

func (s *MemoryStore) CountCitizensCreatedBetween(_ context.Context, from, to time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, user := range s.users {
		if user.Role != RoleCitizen {
			continue
		}
		if !user.CreatedAt.Before(from) && user.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountByRole(_ context.Context) (map[Role]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[Role]int)
	for _, user := range s.users {
		counts[user.Role]++
	}
	return counts, nil
}

func (s *MemoryStore) SearchCitizens(_ context.Context, term string, limit int) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var matched []User
	for _, user := range s.users {
		if user.Role != RoleCitizen {
			continue
		}
		if matchesQuery(user, term) {
			matched = append(matched, user)
		}
	}
	sortNewestFirst(matched)
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesQuery(user User, q string) bool {
	q = strings.ToLower(q)
	return strings.Contains(strings.ToLower(user.FullName), q) ||
		strings.Contains(strings.ToLower(user.Email), q) ||
		strings.Contains(strings.ToLower(user.Mobile), q)
}

func sortNewestFirst(users []User) {
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
}
