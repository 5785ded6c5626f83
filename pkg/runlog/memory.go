package runlog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps the most recent runs in a fixed-size ring.
type MemoryStore struct {
	mu    sync.RWMutex
	ring  []Record
	next  int
	count int
}

// NewMemoryStore creates a store holding up to limit runs.
func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{ring: make([]Record, limit)}
}

// Save stores r, evicting the oldest run when full. Saving an id that is
// still held replaces it in place.
func (s *MemoryStore) Save(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.indexOf(r.ID); ok {
		s.ring[i] = r
		return nil
	}

	s.ring[s.next] = r
	s.next = (s.next + 1) % len(s.ring)
	if s.count < len(s.ring) {
		s.count++
	}
	return nil
}

// Get returns the run with the given id.
func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.indexOf(id); ok {
		return s.ring[i], nil
	}
	return Record{}, ErrNotFound
}

// List returns up to limit runs, newest first.
func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.count
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, s.ring[s.slot(i)])
	}
	return out, nil
}

// slot returns the ring index of the i-th newest entry (1-based).
func (s *MemoryStore) slot(i int) int {
	return (s.next - i + len(s.ring)) % len(s.ring)
}

func (s *MemoryStore) indexOf(id uuid.UUID) (int, bool) {
	for i := 1; i <= s.count; i++ {
		j := s.slot(i)
		if s.ring[j].ID == id {
			return j, true
		}
	}
	return 0, false
}
