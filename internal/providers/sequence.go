package providers

import "sync/atomic"

// SequenceNumberProvider hands out strictly increasing numbers, used both
// for the session number (scoped to the OpenKit instance) and for the
// per-beacon sequence number embedded in every wire record.
type SequenceNumberProvider interface {
	// Next returns the next value in the sequence, starting at 1.
	Next() int32
}

type atomicSequenceProvider struct {
	counter atomic.Int32
}

var _ SequenceNumberProvider = (*atomicSequenceProvider)(nil)

// NewSequenceNumberProvider returns a fresh, zero-based sequence provider.
func NewSequenceNumberProvider() SequenceNumberProvider {
	return &atomicSequenceProvider{}
}

func (p *atomicSequenceProvider) Next() int32 {
	return p.counter.Add(1)
}
