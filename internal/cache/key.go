// Package cache implements the beacon cache: an in-memory, per-session
// append-only log of serialized records with active/sending staging
// buffers and age/size-based eviction.
package cache

import "fmt"

// Key identifies one buffered data stream: a (session number, session
// sequence) pair. Session sequence increments on every watchdog-driven split.
type Key struct {
	SessionNumber   int32
	SessionSequence int32
}

func (k Key) String() string {
	return fmt.Sprintf("%d-%d", k.SessionNumber, k.SessionSequence)
}

// Record is one (timestamp-ms, serialized-text) entry in a cache entry's log.
type Record struct {
	TimestampMs int64
	Data        string
}

func (r Record) sizeBytes() int {
	return len(r.Data)
}
