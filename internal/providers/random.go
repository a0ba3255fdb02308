package providers

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	mathrand "math/rand/v2"
	"sync"
)

// RandomProvider supplies randomness for device ID generation and
// traffic-control sampling. Both values come from one PCG generator seeded
// from crypto/rand.
type RandomProvider interface {
	// NextDeviceID returns a random positive 63-bit integer suitable for use
	// as a device identifier.
	NextDeviceID() int64
	// NextPercentageValue returns a value in [0, 100) used to decide whether
	// this session falls inside the server's traffic-control sampling window.
	NextPercentageValue() int
}

type defaultRandomProvider struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

var _ RandomProvider = (*defaultRandomProvider)(nil)

// NewRandomProvider returns a RandomProvider seeded from a CSPRNG source.
func NewRandomProvider() RandomProvider {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable system state; fall
		// back to a fixed seed rather than panic, since device ID stability
		// within one process run matters more than unpredictability here.
		binary.BigEndian.PutUint64(seed[:8], 0x9E3779B97F4A7C15)
	}
	s1 := binary.LittleEndian.Uint64(seed[0:8])
	s2 := binary.LittleEndian.Uint64(seed[8:16])
	return &defaultRandomProvider{
		rng: mathrand.New(mathrand.NewPCG(s1, s2)),
	}
}

func (p *defaultRandomProvider) NextDeviceID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	v := p.rng.Int64N(math.MaxInt64) + 1
	return v
}

func (p *defaultRandomProvider) NextPercentageValue() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(100)
}
