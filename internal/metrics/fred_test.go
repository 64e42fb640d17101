package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/namelens/fredlens/internal/core/dispatch"
	"github.com/namelens/fredlens/internal/observability"
)

var _ dispatch.Recorder = DispatchRecorder{}

func TestNewDispatchRecorderScope(t *testing.T) {
	assert.Equal(t, "fred", NewDispatchRecorder("").Scope)
	assert.Equal(t, "maps", NewDispatchRecorder("maps").Scope)
}

func TestRecordersAreNoopsWithoutTelemetry(t *testing.T) {
	prev := observability.TelemetrySystem
	observability.TelemetrySystem = nil
	t.Cleanup(func() { observability.TelemetrySystem = prev })

	r := NewDispatchRecorder("fred")
	assert.NotPanics(t, func() {
		r.Dispatched("series/observations", "success")
		r.CacheLookup(true)
		r.Retry("series")
		r.Throttled(250*time.Millisecond, 3)
		SetServerStartTime(time.Now())
		RecordHealthCheck("fred_api", true)
		RecordError("NOT_FOUND", 404)
		RecordPanic()
		RecordErrorByEndpoint("/v1/series/GDP", "NOT_FOUND")
	})
}
