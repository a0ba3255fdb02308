// Package lifecycle implements the composite parent-child tree shared by
// Session, RootAction, Action, and WebRequestTracer: per-node locking,
// child bookkeeping, and the leave/cancel state machine's common scaffolding.
package lifecycle

import "sync"

// Child is the capability every composite child exposes so its parent can
// close it during its own leave/cancel transition.
type Child interface {
	// Dispose commits the child (the CANCELED path's sibling action).
	Dispose()
}

// Cancelable is queried at runtime: "is this child cancellable?" is the one
// place in the tree where dynamic dispatch matters, per the composite's
// one exception to static typing.
type Cancelable interface {
	Cancel()
}

// Composite is the base embedded by every node in the OpenKit → Session →
// RootAction → Action → WebRequestTracer tree. It owns a lock guarding its
// child list and its own closed flag; callers must never take a second
// composite's lock while holding this one ("no upward lock recursion").
type Composite struct {
	mu       sync.Mutex
	children []Child
	isLeft   bool
}

// StoreChild registers c as a child of this node.
func (n *Composite) StoreChild(c Child) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.children = append(n.children, c)
}

// RemoveChild unregisters c, used by OnChildClosed to detach a closed child.
func (n *Composite) RemoveChild(c Child) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, existing := range n.children {
		if existing == c {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}

// CopyOfChildren returns a snapshot of the current children, safe to range
// over after the lock has been released (the tree may mutate concurrently).
func (n *Composite) CopyOfChildren() []Child {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Child, len(n.children))
	copy(out, n.children)
	return out
}

// MarkLeft attempts to transition this node to "left". It returns false if
// the node was already left (the transition is idempotent: the caller
// should treat a false return as a no-op and reuse the cached parent
// reference instead of doing any further work).
func (n *Composite) MarkLeft() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.isLeft {
		return false
	}
	n.isLeft = true
	return true
}

// IsLeft reports the current closed state without mutating it.
func (n *Composite) IsLeft() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isLeft
}

// CloseChildren closes every current child: Cancel() if cancel is true and
// the child supports it, Dispose() otherwise. It must be called outside
// this node's own lock (children may call back into this node's
// OnChildClosed, which takes the lock again).
func CloseChildren(children []Child, cancel bool) {
	for _, c := range children {
		if cancel {
			if cancelable, ok := c.(Cancelable); ok {
				cancelable.Cancel()
				continue
			}
		}
		c.Dispose()
	}
}
