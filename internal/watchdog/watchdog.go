// Package watchdog implements the background cadence that drains the
// beacon cache to the collector, splits idle or long-running sessions, and
// runs cache eviction. It performs every beacon POST (the new-session GET is
// issued by each session in its own goroutine) and cooperates with shutdown
// via context cancellation.
package watchdog

import (
	"context"
	"time"

	"github.com/voyago/rumkit/internal/cache"
	"github.com/voyago/rumkit/internal/logger"
	"github.com/voyago/rumkit/internal/telemetry/metrics"
)

// TrackedSession is the subset of session behavior the watchdog needs,
// kept narrow so this package doesn't depend on the root session type
// (which in turn depends on watchdog's Registrar for splitting).
type TrackedSession interface {
	// IsFinished reports whether the session and all its descendants have closed.
	IsFinished() bool
	// LastInteractionMs returns the session's last activity timestamp (ms since epoch).
	LastInteractionMs() int64
	// StartedAtMs returns the session's creation timestamp (ms since epoch).
	StartedAtMs() int64
	// ConfiguredByServer reports whether a server response has been received
	// for this session yet (splitting only applies once configured).
	ConfiguredByServer() bool
	// SendIntervalMs returns the currently-configured send cadence for this session.
	SendIntervalMs() int64
	// SessionTimeoutMs / MaxSessionDurationMs return the currently-configured
	// split thresholds.
	SessionTimeoutMs() int64
	MaxSessionDurationMs() int64

	// Send drains the session's buffered beacon data to the collector.
	Send(ctx context.Context) error
	// SplitAndReplaceWithSuccessor ends this session and creates a successor
	// sharing its last user tag, per the split-and-replay rule.
	SplitAndReplaceWithSuccessor(ctx context.Context) error
	// Finalize drains any remaining cache data and deletes the cache entry.
	Finalize()
	// CacheKey identifies this session's beacon cache entry.
	CacheKey() cache.Key
}

// Registry is the live set of sessions the watchdog iterates each tick.
// OpenKit implements this by returning a snapshot of its current sessions.
type Registry interface {
	Snapshot() []TrackedSession
	// Remove drops a finished session from the registry.
	Remove(s TrackedSession)
}

// Watchdog runs the session sender/split/eviction cadence on a single
// background goroutine until its context is canceled.
type Watchdog struct {
	registry Registry
	cacheDB  *cache.BeaconCache
	log      logger.Logger
	metrics  metrics.Metrics

	ageCheckInterval         time.Duration
	recordAgeLimit           time.Duration
	upperMemoryBoundaryBytes int64
	lowerMemoryBoundaryBytes int64

	done chan struct{}
}

// New constructs a Watchdog. Call Run in its own goroutine.
func New(
	registry Registry,
	beaconCache *cache.BeaconCache,
	log logger.Logger,
	m metrics.Metrics,
	ageCheckInterval, recordAgeLimit time.Duration,
	upperMemoryBoundaryBytes, lowerMemoryBoundaryBytes int64,
) *Watchdog {
	return &Watchdog{
		registry:                 registry,
		cacheDB:                  beaconCache,
		log:                      log,
		metrics:                  m,
		ageCheckInterval:         ageCheckInterval,
		recordAgeLimit:           recordAgeLimit,
		upperMemoryBoundaryBytes: upperMemoryBoundaryBytes,
		lowerMemoryBoundaryBytes: lowerMemoryBoundaryBytes,
		done:                     make(chan struct{}),
	}
}

// Run executes the cadence loop until ctx is canceled. It then performs one
// final drain pass before returning, so Shutdown's bounded wait observes a
// fully-drained cache whenever possible.
func (w *Watchdog) Run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.tick(context.Background())
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

// Done returns a channel closed once Run has returned.
func (w *Watchdog) Done() <-chan struct{} {
	return w.done
}

// tickInterval is the age-check interval when that is below 2s, otherwise a
// fixed 2s; it is computed once when Run starts, and the server-configured
// send interval is not consulted. Split deadlines are checked every tick
// since they vary per session.
func (w *Watchdog) tickInterval() time.Duration {
	if w.ageCheckInterval > 0 && w.ageCheckInterval < 2*time.Second {
		return w.ageCheckInterval
	}
	return 2 * time.Second
}

func (w *Watchdog) tick(ctx context.Context) {
	w.processSessions(ctx)
	w.runEviction()
}

func (w *Watchdog) processSessions(ctx context.Context) {
	sessions := w.registry.Snapshot()
	nowMs := time.Now().UnixMilli()

	for _, s := range sessions {
		if s.IsFinished() {
			s.Finalize()
			w.registry.Remove(s)
			continue
		}

		if w.shouldSplit(s, nowMs) {
			if err := s.SplitAndReplaceWithSuccessor(ctx); err != nil && w.log != nil {
				w.log.WithField("error", err.Error()).Warn("session split failed")
			}
			continue
		}

		if err := s.Send(ctx); err != nil && w.log != nil {
			w.log.WithField("error", err.Error()).Debug("session send deferred to next cycle")
		}
	}
}

func (w *Watchdog) shouldSplit(s TrackedSession, nowMs int64) bool {
	if !s.ConfiguredByServer() {
		return false
	}

	if timeout := s.SessionTimeoutMs(); timeout > 0 {
		if nowMs-s.LastInteractionMs() >= timeout {
			return true
		}
	}

	if maxDuration := s.MaxSessionDurationMs(); maxDuration > 0 {
		if nowMs-s.StartedAtMs() >= maxDuration {
			return true
		}
	}

	return false
}

func (w *Watchdog) runEviction() {
	if w.cacheDB == nil {
		return
	}

	nowMs := time.Now().UnixMilli()
	if w.recordAgeLimit > 0 {
		w.cacheDB.EvictRecordsByAge(nowMs, w.recordAgeLimit.Milliseconds())
	}

	if w.upperMemoryBoundaryBytes > 0 && w.cacheDB.CacheSizeBytes() > w.upperMemoryBoundaryBytes {
		w.cacheDB.EvictUntilUnderBoundary(w.lowerMemoryBoundaryBytes)
	}

	if w.metrics != nil {
		w.metrics.RecordCacheSize(w.cacheDB.CacheSizeBytes())
	}
}
