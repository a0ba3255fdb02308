package providers

import (
	"os"
	"sync"
)

// ThreadIDProvider supplies the identifier recorded in the "it" wire field.
// The platforms OpenKit-style agents originate from expose a native thread
// ID; Go has no equivalent concept, so this package hands out a stable
// per-process synthetic ID instead, which is sufficient for the field's
// purpose (distinguishing concurrent bursts of activity in a session).
type ThreadIDProvider interface {
	ThreadID() int
}

type defaultThreadIDProvider struct {
	once sync.Once
	id   int
}

var _ ThreadIDProvider = (*defaultThreadIDProvider)(nil)

// NewThreadIDProvider returns a ThreadIDProvider that reports the OS
// process ID, computed once and cached.
func NewThreadIDProvider() ThreadIDProvider {
	return &defaultThreadIDProvider{}
}

func (p *defaultThreadIDProvider) ThreadID() int {
	p.once.Do(func() {
		p.id = os.Getpid()
	})
	return p.id
}
