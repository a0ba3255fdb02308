package beacon

import (
	"context"
	"fmt"
	"time"

	"github.com/voyago/rumkit/internal/protocol"
	"github.com/voyago/rumkit/internal/telemetry/metrics"
)

// Sender is the minimal surface send() needs from the protocol adapter; it
// exists so beacon doesn't import the httpclient package directly.
type Sender interface {
	SendChunk(ctx context.Context, query string, chunk []byte) (*protocol.Result, error)
}

// Send drains this Beacon's cache entry to the collector, chunk by chunk,
// per §4.1's send loop. It returns the last Result seen (possibly nil if
// there was nothing to send) and stops at the first transport error,
// leaving the unsent chunk buffered for the next cycle.
func (b *Beacon) Send(ctx context.Context, sender Sender, m metrics.Metrics, sessionStartMs int64) (*protocol.Result, error) {
	b.cache.PrepareDataForSending(b.key)

	var last *protocol.Result
	for b.cache.HasDataForSending(b.key) {
		nowMs := b.timing.TimestampMillis()
		prefix := b.ImmutablePrefix() + "&" + b.MutablePrefix(sessionStartMs, nowMs) + "&"

		maxChunkBytes := b.serverConfig.Get().BeaconSizeBytes - 1024
		if maxChunkBytes <= 0 {
			maxChunkBytes = 1024
		}

		chunk := b.cache.GetNextBeaconChunk(b.key, prefix, maxChunkBytes, "&")
		if chunk == "" {
			break
		}

		query := fmt.Sprintf("vi=%d&sn=%d", b.effectiveDeviceID, b.key.SessionNumber)

		start := time.Now()
		result, err := sender.SendChunk(ctx, query, []byte(chunk))
		elapsed := time.Since(start)

		statusCode := 0
		if result != nil {
			statusCode = result.StatusCode
		}
		if m != nil {
			m.RecordSend(statusCode, len(chunk), elapsed)
		}

		if err != nil {
			b.cache.ResetChunkedData(b.key)
			if b.log != nil {
				b.log.WithField("error", err.Error()).Warn("beacon send failed, chunk re-queued")
			}
			return result, err
		}

		b.cache.RemoveChunkedData(b.key)
		if result != nil && result.ServerConfig != nil {
			b.serverConfig.MergeUpdate(result.ServerConfig)
		}
		last = result
	}

	return last, nil
}
