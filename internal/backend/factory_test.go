package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket/internal/config"
	applog "pocket/internal/log"
	"pocket/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres"})
	assert.ErrorContains(t, err, "invalid backend type")

	cfg, err := FromAppConfig(&config.Config{DataBackend: "redis", RedisAddr: "cache:6379", RedisDB: 2, RedisPrefix: "p:"})
	require.NoError(t, err)
	assert.Equal(t, RedisBackend, cfg.Type)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, "p:", cfg.RedisPrefix)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"file without dir", Config{Type: FileBackend}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"redis without addr", Config{Type: RedisBackend}, true},
		{"unknown", Config{Type: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Len(t, GetBackendTypes(), 4)
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	factory := NewFactory(applog.Nop())

	for _, cfg := range []Config{
		{Type: MemoryBackend},
		{Type: FileBackend, DataDirectory: filepath.Join(dir, "files")},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "pocket.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			res, err := factory.CreateBackend(ctx, cfg)
			require.NoError(t, err)
			assert.Equal(t, cfg.Type, res.Type)

			require.NoError(t, res.Store.Set(ctx, storage.KeyTheme, "dark"))
			v, ok, err := res.Store.Get(ctx, storage.KeyTheme)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "dark", v)

			assert.NoError(t, res.Cleanup())
		})
	}
}

func TestCreateBackend_Errors(t *testing.T) {
	factory := NewFactory(applog.Nop())

	_, err := factory.CreateBackend(context.Background(), Config{Type: FileBackend})
	assert.ErrorContains(t, err, "data directory is required")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = factory.CreateBackend(ctx, Config{Type: RedisBackend, RedisAddr: "127.0.0.1:1"})
	assert.ErrorContains(t, err, "failed to initialize redis storage")
}
