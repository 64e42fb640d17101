package integration

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/observability"
	"github.com/namelens/fredlens/internal/server"
	"github.com/namelens/fredlens/internal/server/handlers"
)

// cleanupMetrics tears down global telemetry state so each test starts clean.
// This matters in sandboxes where lingering exporters can block future binds.
func cleanupMetrics(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		if observability.PrometheusExporter != nil {
			_ = observability.PrometheusExporter.Stop()
			observability.PrometheusExporter = nil
		}
		observability.TelemetrySystem = nil
	})
}

// isPermissionError normalizes OS-specific permission errors (macOS/Linux/BSD)
// so we can gracefully skip when loopback sockets are blocked.
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, os.ErrPermission) || errors.Is(err, syscall.EACCES) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{"permission denied", "operation not permitted", "not permitted"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}

	return false
}

// initMetricsOrSkip attempts to start the metrics exporter; if the environment
// forbids network binds we skip instead of failing the entire suite.
func initMetricsOrSkip(t *testing.T) {
	t.Helper()

	if err := observability.InitMetrics("test", 0, "test"); err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping metrics tests due to sandbox permissions: %v", err)
		}
		require.NoError(t, err)
	}

	cleanupMetrics(t)
}

// newTestServer binds to IPv4 loopback explicitly (avoiding IPv6-only defaults)
// and skips when the sandbox refuses to open sockets.
func newTestServer(t *testing.T, cfg server.Config, setup func(*chi.Mux)) (*httptest.Server, *http.Client) {
	t.Helper()
	cfg.Host = "127.0.0.1"
	srv := server.New(cfg)
	if setup != nil {
		if mux, ok := srv.Handler().(*chi.Mux); ok {
			setup(mux)
		}
	}

	listener, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if isPermissionError(err) {
			t.Skipf("skipping metrics server setup: %v", err)
		}
		require.NoError(t, err)
	}

	ts := &httptest.Server{
		Listener: listener,
		Config:   &http.Server{Handler: srv.Handler()},
	}
	ts.Start()
	t.Cleanup(ts.Close)
	return ts, ts.Client()
}

// TestMetricsCountGatewayTraffic drives the built-in routes from several
// workers, including an upstream that fails, and reads the counters back.
func TestMetricsCountGatewayTraffic(t *testing.T) {
	observability.InitCLILogger("test", false)
	observability.InitServerLogger("test", "info")
	initMetricsOrSkip(t)
	handlers.InitHealthManager("test")

	var hits int64
	upstream := fakeFRED(t, &hits)
	cfg, _ := newGatewayConfig(t, upstream.URL+"/broken", "async")
	ts, client := newTestServer(t, cfg, nil)

	paths := []string{
		"/health/live",
		"/version",
		"/v1/series/GDP/observations",
		"/v1/series/GDP/observations?limit=-1",
		"/v1/no-such-route",
	}

	const requests = 40
	const workers = 8
	jobs := make(chan string, requests)
	for i := 0; i < requests; i++ {
		jobs <- paths[i%len(paths)]
	}
	close(jobs)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for path := range jobs {
				resp, err := client.Get(ts.URL + path)
				if err != nil {
					continue
				}
				_, _ = io.Copy(io.Discard, resp.Body)
				_ = resp.Body.Close()
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	resp, err := client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	content := string(body)
	assert.Contains(t, content, "test_http_requests_total")
	assert.Contains(t, content, "test_http_request_duration_ms")
	assert.Contains(t, content, "fred_dispatch_total")
	assert.Less(t, elapsed, 10*time.Second)
	t.Logf("%d requests in %v", requests, elapsed)
}

func TestMetricsExposition(t *testing.T) {
	observability.InitServerLogger("test", "info")
	initMetricsOrSkip(t)
	handlers.InitHealthManager("test")

	ts, client := newTestServer(t, server.Config{}, nil)

	resp, err := client.Get(ts.URL + "/health")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, readErr := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, readErr)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain; version=0.0.4"),
		"unexpected content type %q", resp.Header.Get("Content-Type"))

	samples := 0
	for _, line := range strings.Split(strings.TrimSpace(string(body)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		require.GreaterOrEqual(t, len(strings.Fields(line)), 2, "malformed sample %q", line)
		samples++
	}
	assert.Positive(t, samples)
}

func TestMetricsUnavailableWithoutTelemetry(t *testing.T) {
	observability.InitServerLogger("test", "info")

	exporter, system := observability.PrometheusExporter, observability.TelemetrySystem
	observability.PrometheusExporter, observability.TelemetrySystem = nil, nil
	t.Cleanup(func() {
		observability.PrometheusExporter, observability.TelemetrySystem = exporter, system
	})
	t.Setenv("FREDLENS_METRICS_ENABLED", "false")

	handlers.InitHealthManager("test")
	ts, client := newTestServer(t, server.Config{}, nil)

	resp, err := client.Get(ts.URL + "/health/live")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
