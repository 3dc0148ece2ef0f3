package sequence

import (
	"context"
	"sync"
)

// MemoryAllocator is the in-memory counter used without a database and as the
// test double.
type MemoryAllocator struct {
	mu   sync.Mutex
	next map[string]int
}

func NewMemoryAllocator() *MemoryAllocator {
	return &MemoryAllocator{next: make(map[string]int)}
}

func (a *MemoryAllocator) Next(_ context.Context, prefix string, year int) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := Format(prefix, year, 0)
	n, ok := a.next[key]
	if !ok {
		n = Start
	}
	a.next[key] = n + 1
	return n, nil
}
