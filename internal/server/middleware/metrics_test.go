package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/telemetry"
	telemetrytesting "github.com/fulmenhq/gofulmen/telemetry/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namelens/fredlens/internal/observability"
)

func setupTelemetry(t *testing.T) *telemetrytesting.FakeCollector {
	t.Helper()

	collector := telemetrytesting.NewFakeCollector()
	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: collector,
	})
	require.NoError(t, err)

	original := observability.TelemetrySystem
	observability.TelemetrySystem = sys
	t.Cleanup(func() {
		observability.TelemetrySystem = original
	})

	return collector
}

func TestRequestMetricsEmitsCounters(t *testing.T) {
	collector := setupTelemetry(t)

	handler := RequestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"GDP"}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series/GDP", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Greater(t, collector.CountMetricsByName("http_requests_total"), 0)
	assert.Greater(t, collector.CountMetricsByName("http_request_duration_ms"), 0)
	assert.Greater(t, collector.CountMetricsByName("http_response_size_bytes"), 0)
	assert.Equal(t, 0, collector.CountMetricsByName("http_errors_total"))
}

func TestRequestMetricsCountsErrors(t *testing.T) {
	collector := setupTelemetry(t)

	handler := RequestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series/GDP", nil))

	assert.Greater(t, collector.CountMetricsByName("http_errors_total"), 0)
}

func TestRequestMetricsWithoutTelemetry(t *testing.T) {
	original := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = original })

	handler := RequestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"/health", "/health/*"},
		{"/health/ready", "/health/*"},
		{"/version", "/version"},
		{"/metrics", "/metrics"},
		{"/v1/series/UNRATE/observations", "/v1/*"},
		{"/api/users/123", "/unknown"},
		{"/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expected, endpointLabel(req))
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	setupTelemetry(t)

	var seen string
	handler := RequestID(RequestMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/v1/rate-limit", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", seen)
}

func TestRecoveryWritesEnvelope(t *testing.T) {
	handler := RequestID(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/series/GDP", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}
