package observability

import (
	"fmt"
	"net"
	"strconv"

	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/fulmenhq/gofulmen/telemetry/exporters"
)

// DefaultMetricsPort is used when the exporter address cannot be resolved.
const DefaultMetricsPort = 9090

var (
	// TelemetrySystem receives dispatch and gateway metrics. Nil disables them.
	TelemetrySystem *telemetry.System

	// PrometheusExporter serves the collected metrics.
	PrometheusExporter *exporters.PrometheusExporter

	metricsPort int
)

// InitMetrics starts the Prometheus exporter on port (0 picks a free port)
// and installs the telemetry system. Metric names are prefixed with
// namespace, or serviceName when namespace is empty.
func InitMetrics(serviceName string, port int, namespace ...string) error {
	if port < 0 {
		port = 0
	}
	metricsPort = port

	prefix := serviceName
	if len(namespace) > 0 && namespace[0] != "" {
		prefix = namespace[0]
	}

	exporter := exporters.NewPrometheusExporter(prefix, fmt.Sprintf(":%d", port))
	if err := exporter.Start(); err != nil {
		return fmt.Errorf("start prometheus exporter: %w", err)
	}
	PrometheusExporter = exporter

	if bound, err := resolvePort(exporter.GetAddr()); err == nil {
		metricsPort = bound
	} else if port == 0 {
		metricsPort = DefaultMetricsPort
	}

	sys, err := telemetry.NewSystem(&telemetry.Config{
		Enabled: true,
		Emitter: exporter,
	})
	if err != nil {
		return fmt.Errorf("create telemetry system: %w", err)
	}
	TelemetrySystem = sys
	return nil
}

// GetMetricsPort returns the port the Prometheus exporter is listening on.
func GetMetricsPort() int {
	return metricsPort
}

func resolvePort(addr string) (int, error) {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(portStr)
}
