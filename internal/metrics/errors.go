package metrics

import (
	"strconv"

	"github.com/namelens/fredlens/internal/observability"
)

// Error metrics
const (
	ErrorsTotalName      = "errors_total"
	PanicsTotalName      = "panics_total"
	ErrorsByEndpointName = "errors_by_endpoint"
)

// RecordError counts an error envelope returned by the gateway.
func RecordError(errorCode string, httpStatus int) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ErrorsTotalName, 1, map[string]string{
		"error_code":  errorCode,
		"http_status": strconv.Itoa(httpStatus),
	})
}

// RecordPanic counts a recovered handler panic.
func RecordPanic() {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(PanicsTotalName, 1, nil)
}

// RecordErrorByEndpoint counts an error per gateway route.
func RecordErrorByEndpoint(endpoint string, errorCode string) {
	if observability.TelemetrySystem == nil {
		return
	}
	_ = observability.TelemetrySystem.Counter(ErrorsByEndpointName, 1, map[string]string{
		"endpoint":   endpoint,
		"error_code": errorCode,
	})
}
