package cache

import (
	"strings"
	"sync"
)

// BeaconCache is shared by every Beacon belonging to one OpenKit instance.
// It uses a global mutex for the keyset and total-size counter, plus a
// mutex per Key for the record streams themselves, matching the locking
// discipline: readers/writers never hold the global lock while doing
// per-entry work.
type BeaconCache struct {
	globalMu  sync.Mutex
	entries   map[Key]*entry
	totalSize int64
}

// NewBeaconCache returns an empty cache.
func NewBeaconCache() *BeaconCache {
	return &BeaconCache{entries: make(map[Key]*entry)}
}

func (c *BeaconCache) getOrCreate(key Key) *entry {
	c.globalMu.Lock()
	defer c.globalMu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = newEntry()
		c.entries[key] = e
	}
	return e
}

func (c *BeaconCache) get(key Key) (*entry, bool) {
	c.globalMu.Lock()
	defer c.globalMu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}

// AddActionData appends an action record to key's active buffer.
func (c *BeaconCache) AddActionData(key Key, timestampMs int64, data string) {
	e := c.getOrCreate(key)
	e.mu.Lock()
	e.active.actionData = append(e.active.actionData, Record{TimestampMs: timestampMs, Data: data})
	e.mu.Unlock()
	c.addSize(int64(len(data)))
}

// AddEventData appends an event record to key's active buffer.
func (c *BeaconCache) AddEventData(key Key, timestampMs int64, data string) {
	e := c.getOrCreate(key)
	e.mu.Lock()
	e.active.eventData = append(e.active.eventData, Record{TimestampMs: timestampMs, Data: data})
	e.mu.Unlock()
	c.addSize(int64(len(data)))
}

func (c *BeaconCache) addSize(delta int64) {
	c.globalMu.Lock()
	c.totalSize += delta
	c.globalMu.Unlock()
}

// PrepareDataForSending atomically moves key's active buffer into the
// sending buffer, appending rather than replacing in case a previous
// sending pass was never fully drained (resetChunkedData put data back).
func (c *BeaconCache) PrepareDataForSending(key Key) {
	e, ok := c.get(key)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sending.actionData = append(e.sending.actionData, e.active.actionData...)
	e.sending.eventData = append(e.sending.eventData, e.active.eventData...)
	e.active.actionData = nil
	e.active.eventData = nil
}

// HasDataForSending reports whether key's sending buffer still holds data.
func (c *BeaconCache) HasDataForSending(key Key) bool {
	e, ok := c.get(key)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.sending.actionData) > 0 || len(e.sending.eventData) > 0
}

// IsEmpty reports whether key has no data in either buffer.
func (c *BeaconCache) IsEmpty(key Key) bool {
	e, ok := c.get(key)
	if !ok {
		return true
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active.actionData) == 0 && len(e.active.eventData) == 0 &&
		len(e.sending.actionData) == 0 && len(e.sending.eventData) == 0
}

// GetNextBeaconChunk pulls action records then event records from the
// sending buffer up to maxBytes, joins them with delimiter, and prefixes
// with prefix. The records consumed are held in entry.chunkTaken so a
// failed send can restore them via ResetChunkedData.
func (c *BeaconCache) GetNextBeaconChunk(key Key, prefix string, maxBytes int, delimiter string) string {
	e, ok := c.get(key)
	if !ok {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	budget := maxBytes - len(prefix)
	var taken []Record
	var parts []string

	take := func(records *[]Record) {
		for len(*records) > 0 {
			r := (*records)[0]
			cost := len(r.Data)
			if len(parts) > 0 {
				cost += len(delimiter)
			}
			if cost > budget && len(parts) > 0 {
				return
			}
			*records = (*records)[1:]
			parts = append(parts, r.Data)
			taken = append(taken, r)
			budget -= cost
		}
	}

	take(&e.sending.actionData)
	take(&e.sending.eventData)

	e.chunkTaken = taken

	if len(parts) == 0 {
		return ""
	}
	return prefix + strings.Join(parts, delimiter)
}

// ResetChunkedData restores the records taken by the last GetNextBeaconChunk
// call back to the front of the sending buffer, for retry after a failed send.
func (c *BeaconCache) ResetChunkedData(key Key) {
	e, ok := c.get(key)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.chunkTaken) == 0 {
		return
	}
	e.sending.actionData = append(e.chunkTaken, e.sending.actionData...)
	e.chunkTaken = nil
}

// RemoveChunkedData commits the removal of the last GetNextBeaconChunk's
// records (the send succeeded).
func (c *BeaconCache) RemoveChunkedData(key Key) {
	e, ok := c.get(key)
	if !ok {
		return
	}
	e.mu.Lock()
	size := int64(0)
	for _, r := range e.chunkTaken {
		size += int64(r.sizeBytes())
	}
	e.chunkTaken = nil
	e.mu.Unlock()
	c.addSize(-size)
}

// DeleteCacheEntry removes key entirely, used once a session has finished
// draining.
func (c *BeaconCache) DeleteCacheEntry(key Key) {
	c.globalMu.Lock()
	e, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.globalMu.Unlock()
	if !ok {
		return
	}
	e.mu.Lock()
	size := int64(e.active.totalBytes() + e.sending.totalBytes())
	e.mu.Unlock()
	c.addSize(-size)
}

// CacheSizeBytes returns the current total cache occupancy across all keys.
func (c *BeaconCache) CacheSizeBytes() int64 {
	c.globalMu.Lock()
	defer c.globalMu.Unlock()
	return c.totalSize
}
