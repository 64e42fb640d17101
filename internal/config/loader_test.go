package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	ConfigureEnv(v)
	return v
}

func TestLoad(t *testing.T) {
	t.Run("LoadDefaults", func(t *testing.T) {
		t.Setenv("XDG_DATA_HOME", t.TempDir())
		t.Setenv(LegacyAPIKeyEnv, "")

		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
		assert.Equal(t, DefaultMapsBaseURL, cfg.Maps.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, "sync", cfg.API.Mode)
		assert.Equal(t, 120, cfg.API.MaxRequestsPerWindow)
		assert.Equal(t, time.Minute, cfg.API.Window)

		assert.Equal(t, 3, cfg.Retry.Attempts)
		assert.Equal(t, time.Second, cfg.Retry.Wait)

		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, "memory", cfg.Cache.Backend)
		assert.Equal(t, 256, cfg.Cache.MaxEntries)

		assert.Equal(t, "libsql", cfg.Store.Driver)
		expectedStorePath := filepath.Join(gfconfig.GetAppDataDir("fredlens"), "fredlens.db")
		assert.Equal(t, expectedStorePath, cfg.Store.Path)

		assert.Equal(t, "localhost", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, 4, cfg.Workers)

		require.Same(t, cfg, GetConfig())
	})

	t.Run("EnvironmentOverrides", func(t *testing.T) {
		t.Setenv("FREDLENS_API_KEY", "abcdef0123456789abcdef0123456789")
		t.Setenv("FREDLENS_API_MODE", "ASYNC")
		t.Setenv("FREDLENS_API_MAX_REQUESTS_PER_WINDOW", "60")
		t.Setenv("FREDLENS_CACHE_BACKEND", "redis")
		t.Setenv("FREDLENS_RETRY_WAIT", "250ms")

		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		assert.Equal(t, "abcdef0123456789abcdef0123456789", cfg.API.Key)
		assert.Equal(t, "async", cfg.API.Mode)
		assert.Equal(t, 60, cfg.API.MaxRequestsPerWindow)
		assert.Equal(t, "redis", cfg.Cache.Backend)
		assert.Equal(t, 250*time.Millisecond, cfg.Retry.Wait)
	})

	t.Run("LegacyKeyFallback", func(t *testing.T) {
		t.Setenv("FREDLENS_API_KEY", "")
		t.Setenv(LegacyAPIKeyEnv, "legacy-key")

		cfg, err := Load(newTestViper(t))
		require.NoError(t, err)
		assert.Equal(t, "legacy-key", cfg.API.Key)
	})

	t.Run("ConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
api:
  mode: async
  window: 30s
cache:
  backend: libsql
  ttl: 15m
`), 0o600))

		v := newTestViper(t)
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())

		cfg, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "async", cfg.API.Mode)
		assert.Equal(t, 30*time.Second, cfg.API.Window)
		assert.Equal(t, "libsql", cfg.Cache.Backend)
		assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	})

	t.Run("InvalidValues", func(t *testing.T) {
		v := newTestViper(t)
		v.Set("api.mode", "threads")
		v.Set("cache.backend", "etcd")
		v.Set("retry.attempts", 0)

		_, err := Load(v)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.mode")
		assert.Contains(t, err.Error(), "cache.backend")
		assert.Contains(t, err.Error(), "retry.attempts")
	})
}

func TestRequestTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, APIConfig{}.RequestTimeout())
	assert.Equal(t, 3*time.Second, APIConfig{Timeout: 3 * time.Second}.RequestTimeout())
}
