package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps session entries in process memory. Suitable for a
// single instance and for tests; use the Postgres store when sessions
// must be shared across processes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[int64]time.Time)}
}

func (s *MemoryStore) Get(ctx context.Context, userID int64) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.entries[userID]
	return at, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, userID int64, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[userID]; ok {
		return false, nil
	}
	s.entries[userID] = at
	return true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}
