// Package ledger holds the transaction collection and keeps it in sync with
// the "transactions" storage entry.
//
// Every mutation is computed on a copy of the collection, written through to
// storage, and only then committed in memory. A failed write leaves the store
// exactly as it was before the call.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"pocket/internal/core"
	"pocket/internal/storage"
)

var (
	// ErrPersist wraps storage failures during a mutation.
	ErrPersist = errors.New("persist transactions")
	// ErrCorruptData is returned when the stored entry is not a JSON array of transactions.
	ErrCorruptData = errors.New("stored transactions are corrupt")
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator. Used by tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is the transaction state container.
type Store struct {
	mu    sync.RWMutex
	kv    storage.KV
	items []core.Transaction // newest first
	rev   uint64

	now   func() time.Time
	newID func() string
}

// Open loads the persisted collection. A missing entry yields an empty store.
func Open(ctx context.Context, kv storage.KV, opts ...Option) (*Store, error) {
	s := &Store{
		kv:    kv,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory collection with the persisted one.
func (s *Store) Reload(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, storage.KeyTransactions)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	items, err := Decode(raw, ok)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = items
	s.rev++
	s.mu.Unlock()
	return nil
}

// Decode parses the stored representation. Absent or blank entries decode to
// an empty collection.
func Decode(raw string, present bool) ([]core.Transaction, error) {
	if !present || raw == "" || raw == "null" {
		return []core.Transaction{}, nil
	}
	var items []core.Transaction
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
	}
	ids := make(map[string]struct{}, len(items))
	for i, t := range items {
		if t.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrCorruptData, i)
		}
		if _, dup := ids[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrCorruptData, t.ID)
		}
		ids[t.ID] = struct{}{}
	}
	if items == nil {
		items = []core.Transaction{}
	}
	return items, nil
}

// commit persists next and swaps it in. Caller holds the write lock.
func (s *Store) commit(ctx context.Context, next []core.Transaction) error {
	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.kv.Set(ctx, storage.KeyTransactions, string(b)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.items = next
	s.rev++
	return nil
}

// Add validates d, assigns a fresh id, prepends the record and persists it.
// A zero date becomes the current time.
func (s *Store) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if d.Date.IsZero() {
		d.Date = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := d.Transaction(s.newID())
	next := make([]core.Transaction, 0, len(s.items)+1)
	next = append(next, t)
	next = append(next, s.items...)
	if err := s.commit(ctx, next); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Update merges p into the record with the given id. A missing id is a no-op
// reported through found=false. An empty patch changes nothing and does not
// write.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) (t core.Transaction, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, false, nil
	}
	if p.IsEmpty() {
		return s.items[i], true, nil
	}

	merged := p.Apply(s.items[i])
	if err := merged.Validate(); err != nil {
		return s.items[i], true, err
	}

	next := slices.Clone(s.items)
	next[i] = merged
	if err := s.commit(ctx, next); err != nil {
		return s.items[i], true, err
	}
	return merged, true, nil
}

// Delete removes the record with the given id and returns it. A missing id is
// a no-op.
func (s *Store) Delete(ctx context.Context, id string) (core.Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, false, nil
	}
	prior := s.items[i]

	next := make([]core.Transaction, 0, len(s.items)-1)
	next = append(next, s.items[:i]...)
	next = append(next, s.items[i+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return core.Transaction{}, true, err
	}
	return prior, true, nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.items, func(t core.Transaction) bool { return t.ID == id })
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, false
	}
	return s.items[i], true
}

// List returns a copy of the collection, newest first.
func (s *Store) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Recent returns at most n of the newest records.
func (s *Store) Recent(n int) []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n > len(s.items) {
		n = len(s.items)
	}
	return slices.Clone(s.items[:n])
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Aggregates folds the current collection. Nothing is cached.
func (s *Store) Aggregates() core.Aggregates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Summarize(s.items)
}

// Breakdown totals the current collection by category for typ.
func (s *Store) Breakdown(typ core.TransactionType) []core.CategoryAmount {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return core.Breakdown(s.items, typ)
}

// Snapshot returns the collection together with the revision it belongs to.
func (s *Store) Snapshot() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), s.rev
}

// Revision increases with every committed mutation or reload.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}
