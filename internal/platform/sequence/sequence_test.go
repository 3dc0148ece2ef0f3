package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type AllocatorSuite struct {
	suite.Suite
	allocator *MemoryAllocator
	ctx       context.Context
}

func TestAllocatorSuite(t *testing.T) {
	suite.Run(t, new(AllocatorSuite))
}

func (s *AllocatorSuite) SetupTest() {
	s.allocator = NewMemoryAllocator()
	s.ctx = context.Background()
}

func (s *AllocatorSuite) TestSequentialAllocation() {
	s.Run("first number is the start value", func() {
		n, err := s.allocator.Next(s.ctx, "CERT", 2026)
		s.Require().NoError(err)
		s.Equal(Start, n)
	})

	s.Run("subsequent numbers increment by one", func() {
		n, err := s.allocator.Next(s.ctx, "CERT", 2026)
		s.Require().NoError(err)
		s.Equal(Start+1, n)
	})
}

func (s *AllocatorSuite) TestCounterIsolation() {
	s.Run("prefixes count independently", func() {
		n, err := s.allocator.Next(s.ctx, "CERT", 2026)
		s.Require().NoError(err)
		s.Equal(Start, n)

		n, err = s.allocator.Next(s.ctx, "COMP", 2026)
		s.Require().NoError(err)
		s.Equal(Start, n)
	})

	s.Run("years count independently", func() {
		n, err := s.allocator.Next(s.ctx, "CERT", 2027)
		s.Require().NoError(err)
		s.Equal(Start, n)
	})
}

// TestConcurrentAllocation verifies concurrent callers never receive the same
// number.
func (s *AllocatorSuite) TestConcurrentAllocation() {
	const goroutines = 100

	var wg sync.WaitGroup
	results := make(chan int, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.allocator.Next(s.ctx, "COMP", 2026)
			s.NoError(err)
			results <- n
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool, goroutines)
	for n := range results {
		s.False(seen[n], "number %d allocated twice", n)
		seen[n] = true
	}
	s.Len(seen, goroutines)
}

func TestFormat(t *testing.T) {
	got := Format("CERT", 2026, 1000)
	if got != "CERT-2026-1000" {
		t.Fatalf("Format() = %q, want %q", got, "CERT-2026-1000")
	}
}
