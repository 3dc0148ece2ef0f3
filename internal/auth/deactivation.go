package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// The deactivation list records soft-deleted users for the lifetime of any
// token they might still hold. The auth middleware consults it on every
// request; entries expire once all tokens issued before the deactivation
// have run out.

const deactivatedKeyPrefix = "deactivated:user:"

// RedisDeactivationList is the production implementation, shared across
// instances.
type RedisDeactivationList struct {
	client *redis.Client
}

func NewRedisDeactivationList(client *redis.Client) *RedisDeactivationList {
	return &RedisDeactivationList{client: client}
}

func (l *RedisDeactivationList) Deactivate(ctx context.Context, userID string, ttl time.Duration) error {
	if userID == "" {
		return nil
	}
	// Key existence is the marker; value is irrelevant.
	return l.client.Set(ctx, deactivatedKeyPrefix+userID, "1", ttl).Err()
}

func (l *RedisDeactivationList) Reactivate(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return l.client.Del(ctx, deactivatedKeyPrefix+userID).Err()
}

func (l *RedisDeactivationList) IsDeactivated(ctx context.Context, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	_, err := l.client.Get(ctx, deactivatedKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MemoryDeactivationList backs single-instance and test runs.
type MemoryDeactivationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryDeactivationList() *MemoryDeactivationList {
	return &MemoryDeactivationList{entries: make(map[string]time.Time)}
}

func (l *MemoryDeactivationList) Deactivate(_ context.Context, userID string, ttl time.Duration) error {
	if userID == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[userID] = time.Now().Add(ttl)
	return nil
}

func (l *MemoryDeactivationList) Reactivate(_ context.Context, userID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, userID)
	return nil
}

func (l *MemoryDeactivationList) IsDeactivated(_ context.Context, userID string) (bool, error) {
	l.mu.RLock()
	expiry, ok := l.entries[userID]
	l.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		l.mu.Lock()
		delete(l.entries, userID)
		l.mu.Unlock()
		return false, nil
	}
	return true, nil
}
