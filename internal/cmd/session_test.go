//go:build cgo

package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/config"
	"github.com/namelens/fredlens/internal/core/fred"
)

const sessionObservations = `{"count": 1, "observations": [
  {"realtime_start": "2024-01-01", "realtime_end": "2024-01-01", "date": "2024-01-01", "value": "4.1"}
]}`

func newFakeFRED(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sessionObservations))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testSessionConfig(baseURL string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL:              baseURL + "/fred",
			Key:                  "test-key",
			Mode:                 "sync",
			MaxRequestsPerWindow: 10,
			Window:               time.Minute,
		},
		Maps:  config.MapsConfig{BaseURL: baseURL + "/geofred"},
		Retry: config.RetryConfig{Attempts: 1},
		Cache: config.CacheConfig{Enabled: true, Backend: "memory", TTL: time.Minute, MaxEntries: 16},
	}
}

func TestSessionServesRepeatLookupsFromCache(t *testing.T) {
	var hits int64
	srv := newFakeFRED(t, &hits)
	ctx := context.Background()

	s, err := newSession(ctx, testSessionConfig(srv.URL))
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close(ctx)) }()

	for i := 0; i < 2; i++ {
		obs, err := s.client.SeriesObservations(ctx, "UNRATE", fred.ObservationOptions{})
		require.NoError(t, err)
		require.Len(t, obs.Observations, 1)
	}

	assert.Equal(t, int64(1), atomic.LoadInt64(&hits))
	state := s.fred.State()
	assert.Equal(t, "sync", state.Mode)
	assert.Equal(t, 2, state.InWindow)
	assert.Equal(t, 0, s.maps.State().InWindow)
}

func TestSessionRejectsUnknownCacheBackend(t *testing.T) {
	cfg := testSessionConfig("http://127.0.0.1:1")
	cfg.Cache.Backend = "memcached"

	_, err := newSession(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached")
}

func TestSessionPersistsLedgerAcrossRuns(t *testing.T) {
	var hits int64
	srv := newFakeFRED(t, &hits)
	ctx := context.Background()

	cfg := testSessionConfig(srv.URL)
	cfg.Cache.Enabled = false
	cfg.API.PersistLedger = true
	cfg.Store = config.StoreConfig{Driver: "libsql", Path: "file:" + t.TempDir() + "/fredlens.db"}

	first, err := newSession(ctx, cfg)
	require.NoError(t, err)
	_, err = first.client.SeriesObservations(ctx, "GDP", fred.ObservationOptions{})
	require.NoError(t, err)
	require.NoError(t, first.Close(ctx))

	second, err := newSession(ctx, cfg)
	require.NoError(t, err)
	defer func() { require.NoError(t, second.Close(ctx)) }()

	assert.Equal(t, 1, second.fred.State().InWindow)
	assert.Equal(t, 9, second.fred.State().Remaining)
	assert.Equal(t, 0, second.maps.State().InWindow)
}
