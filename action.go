package rumkit

import (
	"sync"
	"sync/atomic"

	"github.com/voyago/rumkit/internal/beacon"
	"github.com/voyago/rumkit/internal/lifecycle"
)

// RootAction is a top-level unit of work within a Session. It can contain
// nested Actions and traced web requests.
type RootAction interface {
	EnterAction(name string) Action
	ReportValueInt(name string, value int64) RootAction
	ReportValueDouble(name string, value float64) RootAction
	ReportValueString(name string, value string) RootAction
	ReportEvent(name string) RootAction
	ReportError(name string, errorCode int32) RootAction
	TraceWebRequest(url string) WebRequestTracer
	LeaveAction() Session
	CancelAction() Session
	ActionID() int32
}

// Action is a nested unit of work within a RootAction.
type Action interface {
	ReportValueInt(name string, value int64) Action
	ReportValueDouble(name string, value float64) Action
	ReportValueString(name string, value string) Action
	ReportEvent(name string) Action
	ReportError(name string, errorCode int32) Action
	TraceWebRequest(url string) WebRequestTracer
	LeaveAction() RootAction
	CancelAction() RootAction
	ActionID() int32
}

// actionParent is the upward capability every action node needs: its own
// action id (0 for a Session) and the ability to receive a close
// notification from a departing child. No lock beyond the child's own is
// ever taken to satisfy this interface.
type actionParent interface {
	actionID() int32
	onChildClosed(c lifecycle.Child)
}

// pendingRecord holds one already-built record string awaiting its owning
// node's leave/cancel decision: flushed to the beacon cache on commit,
// dropped on cancel.
type pendingRecord struct {
	tsMs   int64
	record string
}

type actionNode struct {
	lifecycle.Composite

	b        *beacon.Beacon
	id       int32
	parentID int32
	parent   actionParent

	name     string
	startSeq int32
	startMs  int64

	endTimeMs atomic.Int64
	endSeq    atomic.Int32
	committed atomic.Bool

	pendingMu sync.Mutex
	pending   []pendingRecord
}

func newActionNode(b *beacon.Beacon, parent actionParent, name string) *actionNode {
	id := b.NextID()
	return &actionNode{
		b:        b,
		id:       id,
		parentID: parent.actionID(),
		parent:   parent,
		name:     name,
		startSeq: b.NextSequenceNumber(),
		startMs:  b.CurrentTimestampMs(),
	}
}

func (n *actionNode) actionID() int32 { return n.id }

func (n *actionNode) onChildClosed(c lifecycle.Child) {
	n.RemoveChild(c)
}

// buffer queues an already-built record, deferring its cache append until
// this node resolves leave (flush) or cancel (discard).
func (n *actionNode) buffer(tsMs int64, record string) {
	n.pendingMu.Lock()
	n.pending = append(n.pending, pendingRecord{tsMs: tsMs, record: record})
	n.pendingMu.Unlock()
}

// takePending drains and returns the buffered records, clearing the buffer.
func (n *actionNode) takePending() []pendingRecord {
	n.pendingMu.Lock()
	pending := n.pending
	n.pending = nil
	n.pendingMu.Unlock()
	return pending
}

// close runs the shared leave/cancel transition described in §4.3. commit
// controls whether the action record and its buffered value/event/error/web
// request records are appended (leave) or discarded (cancel).
func (n *actionNode) close(commit bool) {
	if !n.MarkLeft() {
		return
	}

	children := n.CopyOfChildren()
	lifecycle.CloseChildren(children, !commit)

	n.endTimeMs.Store(n.b.CurrentTimestampMs())
	n.endSeq.Store(n.b.NextSequenceNumber())

	pending := n.takePending()
	if commit {
		n.committed.Store(true)
		for _, p := range pending {
			n.b.AppendEventRecord(p.tsMs, p.record)
		}
		_ = n.b.AddAction(n.id, n.parentID, n.name, n.startSeq, n.endSeq.Load(), n.startMs, n.endTimeMs.Load())
	}

	n.parent.onChildClosed(n)
}

// Dispose implements lifecycle.Child for the committing (leave) path.
func (n *actionNode) Dispose() { n.close(true) }

// Cancel implements lifecycle.Cancelable for the discarding (cancel) path.
func (n *actionNode) Cancel() { n.close(false) }

type rootAction struct {
	*actionNode
	session *session
}

var _ RootAction = (*rootAction)(nil)

func newRootAction(s *session, name string) RootAction {
	if s.isClosed() {
		return noopRootAction{}
	}
	truncated, ok := validActionName(name)
	if !ok {
		return noopRootAction{}
	}
	n := newActionNode(s.b, s, truncated)
	ra := &rootAction{actionNode: n, session: s}
	s.StoreChild(ra)
	s.touch()
	return ra
}

func (r *rootAction) EnterAction(name string) Action {
	if r.IsLeft() {
		return noopAction{}
	}
	truncated, ok := validActionName(name)
	if !ok {
		return noopAction{}
	}
	n := newActionNode(r.b, r, truncated)
	a := &action{actionNode: n}
	r.StoreChild(a)
	return a
}

func (r *rootAction) ReportValueInt(name string, value int64) RootAction {
	if ts, record, err := r.b.DeferValueInt(r.id, name, value); err == nil {
		r.buffer(ts, record)
	}
	return r
}

func (r *rootAction) ReportValueDouble(name string, value float64) RootAction {
	if ts, record, err := r.b.DeferValueDouble(r.id, name, value); err == nil {
		r.buffer(ts, record)
	}
	return r
}

func (r *rootAction) ReportValueString(name string, value string) RootAction {
	if ts, record, err := r.b.DeferValueString(r.id, name, value); err == nil {
		r.buffer(ts, record)
	}
	return r
}

func (r *rootAction) ReportEvent(name string) RootAction {
	if ts, record, err := r.b.DeferEvent(r.id, name); err == nil {
		r.buffer(ts, record)
	}
	return r
}

func (r *rootAction) ReportError(name string, errorCode int32) RootAction {
	if ts, record, err := r.b.DeferError(r.id, name, errorCode); err == nil {
		r.buffer(ts, record)
	}
	return r
}

func (r *rootAction) TraceWebRequest(url string) WebRequestTracer {
	if r.IsLeft() {
		return noopTracer{}
	}
	t := newWebRequestTracer(r.b, r.id, url, r.buffer)
	if child, ok := t.(lifecycle.Child); ok {
		r.StoreChild(child)
	}
	return t
}

func (r *rootAction) LeaveAction() Session {
	r.close(true)
	return r.session
}

func (r *rootAction) CancelAction() Session {
	r.close(false)
	return r.session
}

func (r *rootAction) ActionID() int32 { return r.id }

type action struct {
	*actionNode
}

var _ Action = (*action)(nil)

func (a *action) ReportValueInt(name string, value int64) Action {
	if ts, record, err := a.b.DeferValueInt(a.id, name, value); err == nil {
		a.buffer(ts, record)
	}
	return a
}

func (a *action) ReportValueDouble(name string, value float64) Action {
	if ts, record, err := a.b.DeferValueDouble(a.id, name, value); err == nil {
		a.buffer(ts, record)
	}
	return a
}

func (a *action) ReportValueString(name string, value string) Action {
	if ts, record, err := a.b.DeferValueString(a.id, name, value); err == nil {
		a.buffer(ts, record)
	}
	return a
}

func (a *action) ReportEvent(name string) Action {
	if ts, record, err := a.b.DeferEvent(a.id, name); err == nil {
		a.buffer(ts, record)
	}
	return a
}

func (a *action) ReportError(name string, errorCode int32) Action {
	if ts, record, err := a.b.DeferError(a.id, name, errorCode); err == nil {
		a.buffer(ts, record)
	}
	return a
}

func (a *action) TraceWebRequest(url string) WebRequestTracer {
	if a.IsLeft() {
		return noopTracer{}
	}
	t := newWebRequestTracer(a.b, a.id, url, a.buffer)
	if child, ok := t.(lifecycle.Child); ok {
		a.StoreChild(child)
	}
	return t
}

func (a *action) LeaveAction() RootAction {
	a.close(true)
	return a.parent.(RootAction)
}

func (a *action) CancelAction() RootAction {
	a.close(false)
	return a.parent.(RootAction)
}

func (a *action) ActionID() int32 { return a.id }

func validActionName(name string) (string, bool) {
	trimmed := name
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

type noopRootAction struct{}

var _ RootAction = noopRootAction{}

func (noopRootAction) EnterAction(name string) Action { return noopAction{} }
func (noopRootAction) ReportValueInt(name string, value int64) RootAction {
	return noopRootAction{}
}
func (noopRootAction) ReportValueDouble(name string, value float64) RootAction {
	return noopRootAction{}
}
func (noopRootAction) ReportValueString(name string, value string) RootAction {
	return noopRootAction{}
}
func (noopRootAction) ReportEvent(name string) RootAction { return noopRootAction{} }
func (noopRootAction) ReportError(name string, errorCode int32) RootAction {
	return noopRootAction{}
}
func (noopRootAction) TraceWebRequest(url string) WebRequestTracer { return noopTracer{} }
func (noopRootAction) LeaveAction() Session                        { return noopSession{} }
func (noopRootAction) CancelAction() Session                       { return noopSession{} }
func (noopRootAction) ActionID() int32                             { return 0 }

type noopAction struct{}

var _ Action = noopAction{}

func (noopAction) ReportValueInt(name string, value int64) Action      { return noopAction{} }
func (noopAction) ReportValueDouble(name string, value float64) Action { return noopAction{} }
func (noopAction) ReportValueString(name string, value string) Action  { return noopAction{} }
func (noopAction) ReportEvent(name string) Action                      { return noopAction{} }
func (noopAction) ReportError(name string, errorCode int32) Action     { return noopAction{} }
func (noopAction) TraceWebRequest(url string) WebRequestTracer { return noopTracer{} }
func (noopAction) LeaveAction() RootAction                      { return noopRootAction{} }
func (noopAction) CancelAction() RootAction                     { return noopRootAction{} }
func (noopAction) ActionID() int32                              { return 0 }
