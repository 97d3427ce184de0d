package main

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"wavy/internal/cache"
	"wavy/internal/config"
	"wavy/internal/storage"
)

func TestSetupLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		logger, err := setupLogger(&config.LoggerConfig{Level: level, Format: "json", OutputPath: "stdout"})
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := setupLogger(&config.LoggerConfig{Level: "info", Format: "console"})
	assert.NoError(t, err)
}

func TestSetupBackends_Memory(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	b, err := setupBackends(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Nil(t, b.client)
	assert.IsType(t, &storage.MemoryKV{}, b.kv)
	assert.IsType(t, &cache.MemoryStore{}, b.cache)
}

func TestSetupBackends_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("WAVY_STORAGE_DRIVER", "redis")
	t.Setenv("WAVY_REDIS_ADDRESSES", mr.Addr())

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	b, err := setupBackends(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.client.Close() })
	assert.IsType(t, &storage.RedisKV{}, b.kv)
	assert.IsType(t, &cache.RedisStore{}, b.cache)

	require.NoError(t, b.kv.Set(context.Background(), "wavy_check", []byte("1")))
	assert.True(t, mr.Exists("wavy_check"))
}
