// Package metrics provides an abstraction layer for the agent's own
// operational telemetry — cache occupancy and beacon send outcomes — as
// distinct from the RUM data the agent ships on behalf
// of the host application.
package metrics

import (
	"time"

	"github.com/voyago/rumkit/internal/config"
)

// Metrics defines the interface for recording the agent's operational
// performance data. It allows rumkit to be agnostic of the underlying
// provider (Datadog, OTel, etc).
type Metrics interface {
	// Incr increments a counter by 1. Use this for tracking event occurrences.
	Incr(name string, tags []string)

	// Distribution records numeric values for statistical analysis (e.g., chunk size).
	Distribution(name string, value float64, tags []string)

	// Timing records the duration of an operation.
	Timing(name string, value time.Duration, tags []string)

	// RecordSend captures the outcome of one beacon chunk POST.
	//
	// Parameters:
	//   - statusCode: the HTTP status returned by the collector, or 0 on transport error.
	//   - bytes: size in bytes of the chunk that was sent.
	//   - duration: total round-trip time.
	RecordSend(statusCode int, bytes int, duration time.Duration)

	// RecordCacheSize reports the current total cache occupancy in bytes,
	// sampled once per eviction pass.
	RecordCacheSize(bytes int64)

	// Close flushes any buffered metrics and closes the connection to the provider.
	Close() error
}

// New creates a new Metrics instance based on the provided TelemetryConfig.
// It returns a NoOp (No-Operation) implementation if telemetry is disabled.
// Supported types: "datadog", "otel".
//
// Example:
//
//	m, err := metrics.New(&cfg.Telemetry, "production")
func New(cfg *config.TelemetryConfig, env string) (Metrics, error) {
	if cfg == nil || !cfg.Enabled {
		return NewNoOpMetrics(), nil
	}

	switch cfg.Type {
	case "datadog":
		return NewDatadogMetrics(
			cfg.MetricsAddress,
			cfg.Namespace,
			[]string{"env:" + env},
		)
	case "otel":
		return NewOTelMetrics(
			cfg.MetricsAddress,
			cfg.Namespace,
			[]string{"env:" + env},
		)
	default:
		return NewNoOpMetrics(), nil
	}
}
