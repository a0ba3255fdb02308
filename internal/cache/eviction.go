package cache

// EvictRecordsByAge removes records older than maxAgeMs from every key's
// active buffer. The sending buffer is never touched: a record in flight
// must survive until the send attempt resolves.
func (c *BeaconCache) EvictRecordsByAge(nowMs, maxAgeMs int64) int {
	cutoff := nowMs - maxAgeMs
	evicted := 0

	c.globalMu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.globalMu.Unlock()

	var freed int64
	for _, k := range keys {
		e, ok := c.get(k)
		if !ok {
			continue
		}
		e.mu.Lock()
		n1, f1 := evictOlderThan(&e.active.actionData, cutoff)
		n2, f2 := evictOlderThan(&e.active.eventData, cutoff)
		e.mu.Unlock()
		evicted += n1 + n2
		freed += f1 + f2
	}
	if freed > 0 {
		c.addSize(-freed)
	}
	return evicted
}

func evictOlderThan(records *[]Record, cutoff int64) (count int, freedBytes int64) {
	idx := 0
	for idx < len(*records) && (*records)[idx].TimestampMs < cutoff {
		freedBytes += int64((*records)[idx].sizeBytes())
		idx++
	}
	if idx == 0 {
		return 0, 0
	}
	*records = (*records)[idx:]
	return idx, freedBytes
}

// EvictRecordsByNumber caps each key's active buffer at maxRecordsPerEntry,
// dropping the oldest (action records first, then event records) when over.
func (c *BeaconCache) EvictRecordsByNumber(maxRecordsPerEntry int) int {
	c.globalMu.Lock()
	keys := make([]Key, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	c.globalMu.Unlock()

	evicted := 0
	var freed int64
	for _, k := range keys {
		e, ok := c.get(k)
		if !ok {
			continue
		}
		e.mu.Lock()
		total := len(e.active.actionData) + len(e.active.eventData)
		over := total - maxRecordsPerEntry
		for over > 0 && len(e.active.actionData) > 0 {
			freed += int64(e.active.actionData[0].sizeBytes())
			e.active.actionData = e.active.actionData[1:]
			over--
			evicted++
		}
		for over > 0 && len(e.active.eventData) > 0 {
			freed += int64(e.active.eventData[0].sizeBytes())
			e.active.eventData = e.active.eventData[1:]
			over--
			evicted++
		}
		e.mu.Unlock()
	}
	if freed > 0 {
		c.addSize(-freed)
	}
	return evicted
}

// EvictUntilUnderBoundary drops the oldest active records (action stream
// first, then event stream) across all keys, round-robin, until total
// cache size is at or below lowerBoundaryBytes. It never touches the
// sending buffer.
func (c *BeaconCache) EvictUntilUnderBoundary(lowerBoundaryBytes int64) int {
	evicted := 0
	for c.CacheSizeBytes() > lowerBoundaryBytes {
		c.globalMu.Lock()
		keys := make([]Key, 0, len(c.entries))
		for k := range c.entries {
			keys = append(keys, k)
		}
		c.globalMu.Unlock()

		if len(keys) == 0 {
			break
		}

		progressed := false
		for _, k := range keys {
			e, ok := c.get(k)
			if !ok {
				continue
			}
			e.mu.Lock()
			var freed int64
			if len(e.active.actionData) > 0 {
				freed = int64(e.active.actionData[0].sizeBytes())
				e.active.actionData = e.active.actionData[1:]
			} else if len(e.active.eventData) > 0 {
				freed = int64(e.active.eventData[0].sizeBytes())
				e.active.eventData = e.active.eventData[1:]
			}
			e.mu.Unlock()

			if freed > 0 {
				c.addSize(-freed)
				evicted++
				progressed = true
			}
			if c.CacheSizeBytes() <= lowerBoundaryBytes {
				return evicted
			}
		}
		if !progressed {
			break
		}
	}
	return evicted
}
