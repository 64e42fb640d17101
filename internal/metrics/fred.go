package metrics

import (
	"strconv"
	"time"

	"github.com/namelens/fredlens/internal/observability"
)

// Dispatch metrics
const (
	DispatchTotal     = "fred_dispatch_total"
	CacheLookupsTotal = "fred_cache_lookups_total"
	RetriesTotal      = "fred_retries_total"
	ThrottleWaitMS    = "fred_throttle_wait_ms"
	BudgetRemaining   = "fred_budget_remaining"
)

// DispatchRecorder emits dispatcher events through the telemetry system.
// Every call is a no-op until metrics are initialized.
type DispatchRecorder struct {
	// Scope tells FRED and GeoFRED traffic apart ("fred" or "maps").
	Scope string
}

// NewDispatchRecorder returns a recorder labelled with scope.
func NewDispatchRecorder(scope string) DispatchRecorder {
	if scope == "" {
		scope = "fred"
	}
	return DispatchRecorder{Scope: scope}
}

func (r DispatchRecorder) Dispatched(path, outcome string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(DispatchTotal, 1, map[string]string{
		"scope":    r.Scope,
		"endpoint": path,
		"outcome":  outcome,
	})
}

func (r DispatchRecorder) CacheLookup(hit bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	_ = observability.TelemetrySystem.Counter(CacheLookupsTotal, 1, map[string]string{
		"scope":  r.Scope,
		"result": result,
	})
}

func (r DispatchRecorder) Retry(path string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(RetriesTotal, 1, map[string]string{
		"scope":    r.Scope,
		"endpoint": path,
	})
}

// Throttled records one limiter sleep and the budget left when it started.
func (r DispatchRecorder) Throttled(wait time.Duration, remaining int) {
	if observability.TelemetrySystem == nil {
		return
	}
	tags := map[string]string{"scope": r.Scope}
	_ = observability.TelemetrySystem.Histogram(ThrottleWaitMS, wait, tags)
	_ = observability.TelemetrySystem.Gauge(BudgetRemaining, float64(remaining), tags)
}

// Gateway lifecycle metrics
const (
	ServerStartTime  = "fredlens_server_start_time_seconds"
	HealthCheckTotal = "fredlens_health_check_total"
)

// SetServerStartTime records when the gateway started (Unix seconds).
func SetServerStartTime(at time.Time) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Gauge(ServerStartTime, float64(at.Unix()), nil)
}

// RecordHealthCheck counts health check executions.
func RecordHealthCheck(check string, healthy bool) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(HealthCheckTotal, 1, map[string]string{
		"check":   check,
		"healthy": strconv.FormatBool(healthy),
	})
}
