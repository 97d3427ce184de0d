package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", config.Server.GetAddress())
	assert.Equal(t, "memory", config.Storage.Driver)
	assert.Equal(t, "wavy", config.Storage.Prefix)
	assert.Equal(t, time.Hour, config.Cache.TTL)
	assert.Equal(t, 0, config.Cache.MaxEntries)
	assert.Equal(t, "pt-BR", config.TMDB.DefaultLanguage)
	assert.Equal(t, []string{"pt-BR", "en-US"}, config.TMDB.SupportedLanguages)
	assert.Equal(t, []string{"ja", "ko", "zh", "th", "hi", "ta", "te"}, config.TMDB.Localization.Languages)
	assert.Equal(t, "en-US", config.TMDB.Localization.Locale)
	assert.Empty(t, config.Backend.BaseURL)
	assert.Equal(t, []string{"localhost:6379"}, config.Redis.Addresses)
	assert.Equal(t, "wavy:collection-changed", config.Events.RelayChannel)
	assert.True(t, config.RateLimit.Enabled)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
storage:
  driver: redis
cache:
  ttl: 30m
  max_entries: 500
tmdb:
  localization:
    countries: [JP, KR]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	config, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "redis", config.Storage.Driver)
	assert.Equal(t, 30*time.Minute, config.Cache.TTL)
	assert.Equal(t, 500, config.Cache.MaxEntries)
	assert.Equal(t, []string{"JP", "KR"}, config.TMDB.Localization.Countries)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("WAVY_TMDB_API_KEY", "secret")
	t.Setenv("WAVY_BACKEND_BASE_URL", "http://localhost:3001/api")
	t.Setenv("WAVY_REDIS_ADDRESSES", "r1:6379, r2:6379")
	t.Setenv("WAVY_TMDB_LOCALIZATION_LANGUAGES", "ja,ko")

	config, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "secret", config.TMDB.APIKey)
	assert.Equal(t, "http://localhost:3001/api", config.Backend.BaseURL)
	assert.Equal(t, []string{"r1:6379", "r2:6379"}, config.Redis.Addresses)
	assert.Equal(t, []string{"ja", "ko"}, config.TMDB.Localization.Languages)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"driver", map[string]string{"WAVY_STORAGE_DRIVER": "sqlite"}},
		{"port", map[string]string{"WAVY_SERVER_PORT": "0"}},
		{"ttl", map[string]string{"WAVY_CACHE_TTL": "0s"}},
		{"relay without redis", map[string]string{"WAVY_EVENTS_RELAY_ENABLED": "true"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " c ", ""}))
	assert.Empty(t, splitList(nil))
}
