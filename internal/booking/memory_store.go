package booking

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for tests and development runs
// without a database.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]Booking
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]Booking)}
}

func (s *MemoryStore) Insert(_ context.Context, b Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings[b.ID] = b
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *MemoryStore) List(_ context.Context, f ListFilter) ([]Booking, error) {
	s.mu.RLock()
	out := make([]Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if f.Status == "" || b.Status == f.Status {
			out = append(out, b)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Booking) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id string, from, to Status, at time.Time) (Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return Booking{}, ErrNotFound
	}
	if b.Status != from {
		return Booking{}, fmt.Errorf("%w: no longer %s", ErrInvalidTransition, from)
	}
	b.Status = to
	b.UpdatedAt = at
	s.bookings[id] = b
	return b, nil
}
