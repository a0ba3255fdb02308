package cache

import "sync"

// recordStream is one record log, split into action and event sub-streams
// the way the reference cache separates them for eviction priority
// (actions evicted before events on overflow).
type recordStream struct {
	actionData []Record
	eventData  []Record
}

func (s *recordStream) totalBytes() int {
	total := 0
	for _, r := range s.actionData {
		total += r.sizeBytes()
	}
	for _, r := range s.eventData {
		total += r.sizeBytes()
	}
	return total
}

// entry is the per-Key cache state: an active buffer new records append to,
// and a sending buffer that prepareDataForSending moves the active buffer
// into atomically. Both halves are guarded by the same per-entry mutex.
type entry struct {
	mu sync.Mutex

	active  recordStream
	sending recordStream

	// chunkTaken holds the slice handed out by the last getNextBeaconChunk
	// call, so resetChunkedData can restore it verbatim on a failed send.
	chunkTaken []Record
}

func newEntry() *entry {
	return &entry{}
}
