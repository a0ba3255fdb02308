package rumkit

import (
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/voyago/rumkit/internal/beacon"
)

// WebRequestTracer represents one outbound HTTP call an Action traces for
// correlation with server-side traces. Call Start, set response metadata,
// then Stop.
type WebRequestTracer interface {
	// Tag returns the correlation header value to attach to the outbound
	// request (e.g. as the "X-dynaTrace" header). Empty if tracing is
	// disabled or this is the null tracer.
	Tag() string
	SetBytesSent(bytes int) WebRequestTracer
	SetBytesReceived(bytes int) WebRequestTracer
	SetResponseCode(code int) WebRequestTracer
	Start() WebRequestTracer
	Stop()
}

type webRequestTracer struct {
	b              *beacon.Beacon
	parentActionID int32
	url            string
	tag            string

	// buffer defers this tracer's WEB_REQUEST record to the owning action
	// node instead of appending it straight to the cache, so a later cancel
	// can discard it along with the rest of the action's pending data.
	buffer func(tsMs int64, record string)

	startSeq atomic.Int32
	endSeq   atomic.Int32
	started  atomic.Bool
	stopped  atomic.Bool

	bytesSent     atomic.Int64
	bytesReceived atomic.Int64
	responseCode  atomic.Int64
}

var _ WebRequestTracer = (*webRequestTracer)(nil)

func newWebRequestTracer(b *beacon.Beacon, parentActionID int32, rawURL string, buffer func(tsMs int64, record string)) WebRequestTracer {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return noopTracer{}
	}

	seq := b.NextSequenceNumber()
	tag := b.CreateTag(parentActionID, seq)

	t := &webRequestTracer{
		b:              b,
		parentActionID: parentActionID,
		url:            strings.SplitN(rawURL, "?", 2)[0],
		tag:            tag,
		buffer:         buffer,
	}
	t.startSeq.Store(seq)
	t.responseCode.Store(-1)
	return t
}

func (t *webRequestTracer) Tag() string { return t.tag }

func (t *webRequestTracer) SetBytesSent(bytes int) WebRequestTracer {
	t.bytesSent.Store(int64(bytes))
	return t
}

func (t *webRequestTracer) SetBytesReceived(bytes int) WebRequestTracer {
	t.bytesReceived.Store(int64(bytes))
	return t
}

func (t *webRequestTracer) SetResponseCode(code int) WebRequestTracer {
	t.responseCode.Store(int64(code))
	return t
}

func (t *webRequestTracer) Start() WebRequestTracer {
	t.started.Store(true)
	return t
}

func (t *webRequestTracer) Stop() {
	if !t.stopped.CompareAndSwap(false, true) {
		return
	}
	t.endSeq.Store(t.b.NextSequenceNumber())
	ts, record, err := t.b.DeferWebRequest(
		t.parentActionID,
		t.url,
		t.startSeq.Load(),
		t.endSeq.Load(),
		int(t.bytesSent.Load()),
		int(t.bytesReceived.Load()),
		int(t.responseCode.Load()),
	)
	if err == nil {
		t.buffer(ts, record)
	}
}

// Dispose implements lifecycle.Child: a tracer still open when its parent
// closes is stopped as part of that transition.
func (t *webRequestTracer) Dispose() {
	t.Stop()
}

type noopTracer struct{}

var _ WebRequestTracer = noopTracer{}

func (noopTracer) Tag() string                                  { return "" }
func (noopTracer) SetBytesSent(bytes int) WebRequestTracer      { return noopTracer{} }
func (noopTracer) SetBytesReceived(bytes int) WebRequestTracer  { return noopTracer{} }
func (noopTracer) SetResponseCode(code int) WebRequestTracer    { return noopTracer{} }
func (noopTracer) Start() WebRequestTracer                       { return noopTracer{} }
func (noopTracer) Stop()                                         {}
func (noopTracer) Dispose()                                      {}
