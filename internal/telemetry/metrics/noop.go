package metrics

import "time"

type noOpMetrics struct{}

var _ Metrics = (*noOpMetrics)(nil)

func NewNoOpMetrics() Metrics                                                 { return &noOpMetrics{} }
func (m *noOpMetrics) Incr(name string, tags []string)                        {}
func (m *noOpMetrics) Distribution(name string, value float64, tags []string) {}
func (m *noOpMetrics) Timing(name string, value time.Duration, tags []string) {}
func (m *noOpMetrics) RecordSend(statusCode int, bytes int, duration time.Duration) {}
func (m *noOpMetrics) RecordCacheSize(bytes int64)                                  {}
func (m *noOpMetrics) Close() error                                                 { return nil }
