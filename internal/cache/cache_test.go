package cache_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/rumkit/internal/cache"
)

func TestBeaconCache_AddAndDrainHappyPath(t *testing.T) {
	c := cache.NewBeaconCache()
	key := cache.Key{SessionNumber: 1}

	c.AddActionData(key, 100, "et=1&na=root")
	c.AddEventData(key, 101, "et=12&na=click")

	assert.False(t, c.IsEmpty(key))
	assert.False(t, c.HasDataForSending(key))

	c.PrepareDataForSending(key)
	assert.True(t, c.HasDataForSending(key))

	chunk := c.GetNextBeaconChunk(key, "vv=3&", 1024, "&")
	assert.Contains(t, chunk, "vv=3&")
	assert.Contains(t, chunk, "et=1&na=root")
	assert.Contains(t, chunk, "et=12&na=click")

	c.RemoveChunkedData(key)
	assert.False(t, c.HasDataForSending(key))
	assert.True(t, c.IsEmpty(key))
}

func TestBeaconCache_ResetChunkedDataRestoresOnFailure(t *testing.T) {
	c := cache.NewBeaconCache()
	key := cache.Key{SessionNumber: 2}

	c.AddActionData(key, 1, "record-a")
	c.PrepareDataForSending(key)

	chunk := c.GetNextBeaconChunk(key, "", 1024, "&")
	assert.Equal(t, "record-a", chunk)

	c.ResetChunkedData(key)
	assert.True(t, c.HasDataForSending(key))

	again := c.GetNextBeaconChunk(key, "", 1024, "&")
	assert.Equal(t, "record-a", again)
}

func TestBeaconCache_GetNextBeaconChunk_RespectsByteBudget(t *testing.T) {
	c := cache.NewBeaconCache()
	key := cache.Key{SessionNumber: 3}

	c.AddActionData(key, 1, "aaaaaaaaaa")
	c.AddActionData(key, 2, "bbbbbbbbbb")
	c.PrepareDataForSending(key)

	chunk := c.GetNextBeaconChunk(key, "", 15, "&")
	assert.Equal(t, "aaaaaaaaaa", chunk)

	c.RemoveChunkedData(key)
	second := c.GetNextBeaconChunk(key, "", 15, "&")
	assert.Equal(t, "bbbbbbbbbb", second)
}

func TestBeaconCache_DeleteCacheEntry(t *testing.T) {
	c := cache.NewBeaconCache()
	key := cache.Key{SessionNumber: 4}

	c.AddEventData(key, 1, "data")
	assert.EqualValues(t, 4, c.CacheSizeBytes())

	c.DeleteCacheEntry(key)
	assert.EqualValues(t, 0, c.CacheSizeBytes())
	assert.True(t, c.IsEmpty(key))
}

func TestBeaconCache_EvictionNeverTouchesSendingBuffer(t *testing.T) {
	c := cache.NewBeaconCache()
	key := cache.Key{SessionNumber: 5}

	c.AddActionData(key, 1, "old-record")
	c.PrepareDataForSending(key)
	c.AddActionData(key, 1, "also-old-but-still-active")

	evicted := c.EvictRecordsByAge(1_000_000, 1)

	assert.Equal(t, 1, evicted)
	assert.True(t, c.HasDataForSending(key))
}

func TestBeaconCache_EvictUntilUnderBoundary(t *testing.T) {
	c := cache.NewBeaconCache()
	key := cache.Key{SessionNumber: 6}

	for i := 0; i < 10; i++ {
		c.AddEventData(key, int64(i), "0123456789")
	}

	c.EvictUntilUnderBoundary(50)

	assert.LessOrEqual(t, c.CacheSizeBytes(), int64(50))
}
