package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var validFileKey = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// FileStore writes one file per key inside a directory.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(key string) (string, error) {
	if !validFileKey.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.dir, key+".json"), nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	p, err := s.path(key)
	if err != nil {
		return "", false, wrap("file", "get", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap("file", "get", key, err)
	}
	return string(b), true, nil
}

// Set writes to a temp file and renames it over the old one.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	p, err := s.path(key)
	if err != nil {
		return wrap("file", "set", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*.tmp")
	if err != nil {
		return wrap("file", "set", key, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return wrap("file", "set", key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return wrap("file", "set", key, err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("file", "set", key, err)
	}
	return wrap("file", "set", key, os.Rename(tmpName, p))
}

func (s *FileStore) Close() error { return nil }
