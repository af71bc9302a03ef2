package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pocket/internal/storage"
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

var ErrInvalidTheme = errors.New("invalid theme")

// ThemeStore keeps the UI theme preference as a plain string entry.
type ThemeStore struct {
	mu    sync.RWMutex
	kv    storage.KV
	theme string
}

func OpenTheme(ctx context.Context, kv storage.KV) (*ThemeStore, error) {
	s := &ThemeStore{kv: kv}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ThemeStore) Reload(ctx context.Context) error {
	raw, ok, err := s.kv.Get(ctx, storage.KeyTheme)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}
	theme := ThemeSystem
	if ok && ValidTheme(raw) {
		theme = raw
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	return nil
}

func (s *ThemeStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *ThemeStore) Set(ctx context.Context, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if !ValidTheme(theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, theme)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(ctx, storage.KeyTheme, theme); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.theme = theme
	return nil
}

func ValidTheme(s string) bool {
	return s == ThemeLight || s == ThemeDark || s == ThemeSystem
}
