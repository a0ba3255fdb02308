package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyago/rumkit/internal/lifecycle"
)

type fakeChild struct {
	disposed bool
	canceled bool
}

func (f *fakeChild) Dispose() { f.disposed = true }
func (f *fakeChild) Cancel()  { f.canceled = true }

type disposeOnlyChild struct {
	disposed bool
}

func (f *disposeOnlyChild) Dispose() { f.disposed = true }

func TestComposite_MarkLeftIsIdempotent(t *testing.T) {
	var c lifecycle.Composite

	assert.True(t, c.MarkLeft())
	assert.False(t, c.MarkLeft())
	assert.True(t, c.IsLeft())
}

func TestComposite_StoreAndRemoveChild(t *testing.T) {
	var c lifecycle.Composite
	child := &fakeChild{}

	c.StoreChild(child)
	assert.Len(t, c.CopyOfChildren(), 1)

	c.RemoveChild(child)
	assert.Len(t, c.CopyOfChildren(), 0)
}

func TestCloseChildren_DisposePath(t *testing.T) {
	a := &fakeChild{}
	b := &disposeOnlyChild{}

	lifecycle.CloseChildren([]lifecycle.Child{a, b}, false)

	assert.True(t, a.disposed)
	assert.False(t, a.canceled)
	assert.True(t, b.disposed)
}

func TestCloseChildren_CancelPathPrefersCancelable(t *testing.T) {
	a := &fakeChild{}
	b := &disposeOnlyChild{}

	lifecycle.CloseChildren([]lifecycle.Child{a, b}, true)

	assert.True(t, a.canceled)
	assert.False(t, a.disposed)
	// b has no Cancel method, so it still gets Disposed even on the cancel path.
	assert.True(t, b.disposed)
}
