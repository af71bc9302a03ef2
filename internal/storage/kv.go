// Package storage holds the durable key-value layout shared by every backend.
//
// The application persists three string entries: the JSON-encoded transaction
// list, the JSON-encoded profile and the theme preference. Backends only move
// strings around; encoding belongs to the stores that own each entry.
package storage

import (
	"context"
	"errors"
	"fmt"
)

const (
	KeyTransactions = "transactions"
	KeyProfile      = "profile"
	KeyTheme        = "theme"
)

// Keys lists every entry the application owns, in backup order.
var Keys = []string{KeyTransactions, KeyTheme, KeyProfile}

var ErrClosed = errors.New("storage closed")

// KV is a string key-value store with whole-value reads and writes.
type KV interface {
	// Get returns the stored value and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Error wraps a backend failure with the key and backend it happened on.
type Error struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(backend, op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Key: key, Err: err}
}
