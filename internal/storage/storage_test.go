package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, KeyTransactions)
	require.NoError(t, err)
	assert.False(t, ok, "fresh store should be empty")

	require.NoError(t, kv.Set(ctx, KeyTransactions, `[]`))
	require.NoError(t, kv.Set(ctx, KeyProfile, `{"name":"Asha"}`))
	require.NoError(t, kv.Set(ctx, KeyTransactions, `[{"id":"1"}]`))

	v, ok, err := kv.Get(ctx, KeyTransactions)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)

	v, ok, err = kv.Get(ctx, KeyProfile)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"name":"Asha"}`, v)

	require.NoError(t, kv.Set(ctx, KeyTheme, ""))
	v, ok, err = kv.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.True(t, ok, "empty value is still present")
	assert.Empty(t, v)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseKV(t, s)
	assert.Equal(t, 4, s.Writes())

	require.NoError(t, s.Close())
	err := s.Set(context.Background(), KeyTheme, "dark")
	assert.True(t, errors.Is(err, ErrClosed))

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "memory", se.Backend)
	assert.Equal(t, KeyTheme, se.Key)
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	s, err := NewFileStore(dir)
	require.NoError(t, err)
	exerciseKV(t, s)

	b, err := os.ReadFile(filepath.Join(dir, "profile.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Asha"}`, string(b))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp files must not be left behind")
	}

	err = s.Set(context.Background(), "../escape", "x")
	assert.Error(t, err)
}

func TestSQLiteRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db", "pocket.db")
	repo, err := NewSQLiteRepository(path)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	exerciseKV(t, repo)
	assert.NoError(t, repo.Ping(context.Background()))

	// Reopening runs migrations again without error and keeps data.
	require.NoError(t, repo.Close())
	repo, err = NewSQLiteRepository(path)
	require.NoError(t, err)
	v, ok, err := repo.Get(context.Background(), KeyTransactions)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":"1"}]`, v)
}
