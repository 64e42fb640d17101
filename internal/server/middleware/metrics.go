package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/namelens/fredlens/internal/observability"
)

// statusRecorder captures the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	return n, err
}

// endpointLabel returns the chi route pattern, or a coarse bucket when the
// request did not match a route. Raw paths carry series IDs and would
// explode label cardinality.
func endpointLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if pattern := rc.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	path := r.URL.Path
	switch {
	case path == "/health" || strings.HasPrefix(path, "/health/"):
		return "/health/*"
	case path == "/version", path == "/metrics", path == "/":
		return path
	case strings.HasPrefix(path, "/v1/"):
		return "/v1/*"
	default:
		return "/unknown"
	}
}

// RequestMetrics emits http_* counters and histograms for every request and
// logs its completion.
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if observability.TelemetrySystem == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rec, r)
		duration := time.Since(start)

		endpoint := endpointLabel(r)
		status := strconv.Itoa(rec.statusCode)
		labels := map[string]string{
			"method":   r.Method,
			"endpoint": endpoint,
			"status":   status,
		}

		tel := observability.TelemetrySystem
		_ = tel.Counter("http_requests_total", 1, labels)
		_ = tel.Histogram("http_request_duration_ms", duration, labels)
		_ = tel.Gauge("http_response_size_bytes", float64(rec.bytesWritten), map[string]string{
			"method":   r.Method,
			"endpoint": endpoint,
		})

		if rec.statusCode >= 400 {
			class := "client_error"
			if rec.statusCode >= 500 {
				class = "server_error"
			}
			_ = tel.Counter("http_errors_total", 1, map[string]string{
				"method":     r.Method,
				"endpoint":   endpoint,
				"status":     status,
				"error_type": class,
			})
		}

		if observability.ServerLogger != nil {
			observability.ServerLogger.Info("HTTP request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("endpoint", endpoint),
				zap.Int("status", rec.statusCode),
				zap.Duration("duration", duration),
				zap.Int64("response_size", rec.bytesWritten),
				zap.String("request_id", GetRequestID(r.Context())),
			)
		}
	})
}
