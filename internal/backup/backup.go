// Package backup exports and imports the raw stored entries as one JSON
// document.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"pocket/internal/ledger"
	applog "pocket/internal/log"
	"pocket/internal/profile"
	"pocket/internal/storage"
)

var (
	ErrEmptyBundle   = errors.New("backup contains no entries")
	ErrInvalidBundle = errors.New("invalid backup")
)

// Bundle holds each stored entry verbatim. A nil field means the entry was
// absent on export and is left untouched on import.
type Bundle struct {
	Transactions *string `json:"transactions"`
	Theme        *string `json:"theme"`
	Profile      *string `json:"profile"`
}

func (b Bundle) entries() map[string]*string {
	return map[string]*string{
		storage.KeyTransactions: b.Transactions,
		storage.KeyTheme:        b.Theme,
		storage.KeyProfile:      b.Profile,
	}
}

// Reloader is a store that re-reads its entry after an import.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Service struct {
	kv        storage.KV
	reloaders []Reloader
	logger    *applog.Logger
}

func NewService(kv storage.KV, logger *applog.Logger, reloaders ...Reloader) *Service {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Service{kv: kv, reloaders: reloaders, logger: logger.WithComponent(applog.ComponentBackup)}
}

func (s *Service) Export(ctx context.Context) (Bundle, error) {
	var b Bundle
	targets := map[string]**string{
		storage.KeyTransactions: &b.Transactions,
		storage.KeyTheme:        &b.Theme,
		storage.KeyProfile:      &b.Profile,
	}
	for _, key := range storage.Keys {
		raw, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return Bundle{}, fmt.Errorf("export %s: %w", key, err)
		}
		if ok {
			v := raw
			*targets[key] = &v
		}
	}
	s.logger.InfoContext(ctx, "Backup exported", applog.FieldOperation, applog.OpExport)
	return b, nil
}

// WriteJSON writes the bundle pretty-printed.
func WriteJSON(w io.Writer, b Bundle) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// ReadJSON decodes a bundle produced by WriteJSON.
func ReadJSON(r io.Reader) (Bundle, error) {
	var b Bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return Bundle{}, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return b, nil
}

// Validate checks that every present entry decodes the way its store would
// read it.
func (b Bundle) Validate() error {
	if b.Transactions == nil && b.Theme == nil && b.Profile == nil {
		return ErrEmptyBundle
	}
	if b.Transactions != nil {
		if _, err := ledger.Decode(*b.Transactions, true); err != nil {
			return fmt.Errorf("%w: transactions: %v", ErrInvalidBundle, err)
		}
	}
	if b.Profile != nil {
		if _, err := profile.Decode(*b.Profile, true); err != nil {
			return fmt.Errorf("%w: profile: %v", ErrInvalidBundle, err)
		}
	}
	if b.Theme != nil && !profile.ValidTheme(*b.Theme) {
		return fmt.Errorf("%w: theme %q", ErrInvalidBundle, *b.Theme)
	}
	return nil
}

// Import validates the bundle, overwrites the present entries and reloads
// every store. Nothing is written when validation fails.
func (s *Service) Import(ctx context.Context, b Bundle) error {
	if err := b.Validate(); err != nil {
		return err
	}
	var written int
	var writeErr error
	for _, key := range storage.Keys {
		v := b.entries()[key]
		if v == nil {
			continue
		}
		if err := s.kv.Set(ctx, key, *v); err != nil {
			writeErr = fmt.Errorf("import %s: %w", key, err)
			break
		}
		written++
	}
	for _, r := range s.reloaders {
		if err := r.Reload(ctx); err != nil {
			return errors.Join(writeErr, fmt.Errorf("reload after import: %w", err))
		}
	}
	if writeErr != nil {
		return writeErr
	}
	s.logger.InfoContext(ctx, "Backup imported", applog.FieldOperation, applog.OpImport, applog.FieldCount, written)
	return nil
}
