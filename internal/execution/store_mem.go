package execution

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryStore is a thread-safe, in-memory implementation of Store.
// Records are kept sorted by creation time, so window queries and pruning
// are a binary search plus a slice cut.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Compile-time interface check.
var _ Store = (*InMemoryStore)(nil)

// Append adds a record, keeping creation-time order even when callers
// append out of order (clock skew between concurrent requests).
func (s *InMemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.records)
	if n == 0 || !rec.CreatedAt.Before(s.records[n-1].CreatedAt) {
		s.records = append(s.records, rec)
		return nil
	}

	i := sort.Search(n, func(i int) bool {
		return s.records[i].CreatedAt.After(rec.CreatedAt)
	})
	s.records = append(s.records, Record{})
	copy(s.records[i+1:], s.records[i:])
	s.records[i] = rec
	return nil
}

// Since returns records created at or after t, oldest first.
func (s *InMemoryStore) Since(_ context.Context, t time.Time) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].CreatedAt.Before(t)
	})

	if i == len(s.records) {
		return nil, nil
	}

	out := make([]Record, len(s.records)-i)
	copy(out, s.records[i:])
	return out, nil
}

// Prune deletes records created before t.
func (s *InMemoryStore) Prune(_ context.Context, t time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := sort.Search(len(s.records), func(i int) bool {
		return !s.records[i].CreatedAt.Before(t)
	})
	if i == 0 {
		return 0, nil
	}

	s.records = append([]Record(nil), s.records[i:]...)
	return i, nil
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}
