package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/core/cache"
	"github.com/namelens/fredlens/internal/core/dispatch"
	"github.com/namelens/fredlens/internal/core/engine"
	"github.com/namelens/fredlens/internal/core/fred"
	"github.com/namelens/fredlens/internal/metrics"
	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/server"
	"github.com/namelens/fredlens/internal/server/handlers"
)

const observationsBody = `{
  "realtime_start": "2024-01-01",
  "realtime_end": "2024-01-01",
  "count": 2,
  "observations": [
    {"realtime_start": "2024-01-01", "realtime_end": "2024-01-01", "date": "2023-01-01", "value": "3.4"},
    {"realtime_start": "2024-01-01", "realtime_end": "2024-01-01", "date": "2023-02-01", "value": "."}
  ]
}`

// fakeFRED serves series/observations and counts upstream hits.
func fakeFRED(t *testing.T, hits *int64) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		if r.URL.Path != "/fred/series/observations" || r.URL.Query().Get("api_key") != "test-key" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error_code": 400, "error_message": "Bad Request."}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(observationsBody))
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func newGatewayConfig(t *testing.T, baseURL string, mode engine.Mode) (server.Config, *dispatch.Dispatcher) {
	t.Helper()
	d, err := dispatch.New(dispatch.Options{
		BaseURL:              baseURL,
		APIKey:               "test-key",
		Mode:                 mode,
		CacheEnabled:         true,
		Cache:                cache.NewMemory(64, time.Minute),
		MaxRequestsPerWindow: 100,
		Window:               time.Minute,
		Retry:                dispatch.RetryPolicy{Attempts: 1},
		Recorder:             metrics.NewDispatchRecorder("fred"),
	})
	require.NoError(t, err)

	return server.Config{
		Client:   fred.NewClient(d),
		Limiters: map[string]handlers.StateReporter{"fred": d},
	}, d
}

func TestGatewayServesObservationsThroughCache(t *testing.T) {
	observability.InitCLILogger("test", false)
	observability.InitServerLogger("test", "info")
	initMetricsOrSkip(t)
	handlers.InitHealthManager("test")

	var hits int64
	upstream := fakeFRED(t, &hits)
	cfg, d := newGatewayConfig(t, upstream.URL+"/fred", engine.ModeAsync)
	ts, client := newTestServer(t, cfg, nil)

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			resp, err := client.Get(ts.URL + "/v1/series/UNRATE/observations")
			if err != nil {
				return
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}()
	}
	wg.Wait()

	// Concurrent misses may each reach FRED; a later call is always a hit.
	before := atomic.LoadInt64(&hits)
	require.GreaterOrEqual(t, before, int64(1))
	require.LessOrEqual(t, before, int64(callers))

	resp, err := client.Get(ts.URL + "/v1/series/UNRATE/observations")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, before, atomic.LoadInt64(&hits))

	var decoded struct {
		Observations []struct {
			Date  string   `json:"date"`
			Value *float64 `json:"value"`
		} `json:"observations"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.Observations, 2)
	assert.Equal(t, "2023-01-01", decoded.Observations[0].Date)
	require.NotNil(t, decoded.Observations[0].Value)
	assert.InDelta(t, 3.4, *decoded.Observations[0].Value, 1e-9)
	assert.Nil(t, decoded.Observations[1].Value)

	// Cache hits still pass the gate.
	assert.Equal(t, callers+1, d.State().InWindow)

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	metricsBody, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	assert.Contains(t, string(metricsBody), "http_requests_total")
	assert.Contains(t, string(metricsBody), "fred_dispatch_total")
}

func TestGatewayRateLimitEndpoint(t *testing.T) {
	observability.InitServerLogger("test", "info")

	var hits int64
	upstream := fakeFRED(t, &hits)
	cfg, _ := newGatewayConfig(t, upstream.URL+"/fred", engine.ModeSync)
	ts, client := newTestServer(t, cfg, nil)

	resp, err := client.Get(ts.URL + "/v1/series/GDP/observations?format=csv")
	require.NoError(t, err)
	csvBody, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, string(csvBody), "2023-01-01")

	resp, err = client.Get(ts.URL + "/v1/rate-limit")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state handlers.RateLimitResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.Len(t, state.Limiters, 1)
	assert.Equal(t, "fred", state.Limiters[0].Scope)
	assert.Equal(t, "sync", state.Limiters[0].Mode)
	assert.Equal(t, 1, state.Limiters[0].InWindow)
	assert.Equal(t, 99, state.Limiters[0].Remaining)
}

func TestGatewayWithoutClientHidesAPI(t *testing.T) {
	observability.InitServerLogger("test", "info")
	handlers.InitHealthManager("test")

	ts, client := newTestServer(t, server.Config{}, nil)

	resp, err := client.Get(ts.URL + "/v1/series/GDP")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/health/live")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
