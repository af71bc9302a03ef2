package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	items  map[string]string
	writes int
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// NewMemoryStoreWith seeds the store with the given entries.
func NewMemoryStoreWith(seed map[string]string) *MemoryStore {
	s := NewMemoryStore()
	for k, v := range seed {
		s.items[k] = v
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false, wrap("memory", "get", key, ErrClosed)
	}
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return wrap("memory", "set", key, ErrClosed)
	}
	s.items[key] = value
	s.writes++
	return nil
}

// Writes returns the number of successful Set calls.
func (s *MemoryStore) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
