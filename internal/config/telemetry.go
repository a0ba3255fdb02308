package config

// TelemetryConfig controls the agent's own self-diagnostic tracing and
// metrics, not the RUM data the agent collects on behalf of the host
// application. It is entirely optional: with Enabled=false every telemetry
// call is routed to a no-op implementation.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	Type           string  `mapstructure:"type"` // "datadog", "otel", or "" (noop)
	MetricsAddress string  `mapstructure:"metrics_address"`
	TracerAddress  string  `mapstructure:"tracer_address"`
	Namespace      string  `mapstructure:"namespace"`
	SampleRate     float64 `mapstructure:"sample_rate"`
}
