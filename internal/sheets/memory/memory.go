package memory

import (
	"context"
	"slices"
	"sync"

	"pocket/internal/core"
	ports "pocket/internal/sheets"
)

var _ ports.Mirror = (*Store)(nil)

// Store is an in-process mirror for tests. Rows keep insertion order like a
// spreadsheet would.
type Store struct {
	mu   sync.Mutex
	rows []core.Transaction
}

func New() *Store {
	return &Store{}
}

func (s *Store) Upsert(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(t.ID); i >= 0 {
		s.rows[i] = t
		return nil
	}
	s.rows = append(s.rows, t)
	return nil
}

func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		s.rows = slices.Delete(s.rows, i, i+1)
	}
	return nil
}

func (s *Store) ReplaceAll(_ context.Context, txs []core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = slices.Clone(txs)
	return nil
}

// Rows returns a copy of the mirrored rows.
func (s *Store) Rows() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.rows)
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.rows, func(t core.Transaction) bool { return t.ID == id })
}
