// Package providers supplies the small, externally-substitutable
// collaborators the beacon engine needs: wall-clock time, a thread
// identifier, randomness for device IDs and traffic-control sampling, and
// monotonic sequence counters for session numbering.
package providers

import "time"

// TimingProvider abstracts wall-clock access so tests can inject a fake
// clock instead of depending on time.Now directly.
type TimingProvider interface {
	// TimeSinceLastInitMillis returns milliseconds elapsed since the
	// provider was constructed (used to compute record timestamps relative
	// to session start).
	TimeSinceLastInitMillis() int64
	// TimestampMillis returns the current wall-clock time in Unix milliseconds.
	TimestampMillis() int64
	// TimestampNanos returns the current wall-clock time in Unix nanoseconds,
	// used as the timestamp of sendEvent/sendBizEvent payloads.
	TimestampNanos() int64
}

type defaultTimingProvider struct {
	initTime time.Time
}

var _ TimingProvider = (*defaultTimingProvider)(nil)

// NewTimingProvider returns the real-clock TimingProvider implementation.
func NewTimingProvider() TimingProvider {
	return &defaultTimingProvider{initTime: time.Now()}
}

func (p *defaultTimingProvider) TimeSinceLastInitMillis() int64 {
	return time.Since(p.initTime).Milliseconds()
}

func (p *defaultTimingProvider) TimestampMillis() int64 {
	return time.Now().UnixMilli()
}

func (p *defaultTimingProvider) TimestampNanos() int64 {
	return time.Now().UnixNano()
}
