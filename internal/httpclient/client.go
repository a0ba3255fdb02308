// Package httpclient defines the minimal HTTP transport contract the
// protocol adapter needs (GET for new-session, POST for beacon chunks) and
// a default fasthttp-backed implementation. The contract is intentionally
// narrow so a host application can supply its own implementation (proxying
// through a service mesh sidecar, adding auth headers, etc).
package httpclient

import (
	"context"
	"time"
)

// Response is the transport-agnostic result of one HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client is the contract the beacon's sender loop depends on.
type Client interface {
	// Get performs an HTTP GET against url and returns the raw response.
	Get(ctx context.Context, url string) (*Response, error)
	// PostPlainText performs an HTTP POST with a text/plain body.
	PostPlainText(ctx context.Context, url string, body []byte) (*Response, error)
}

// Options configures the default Client implementation.
type Options struct {
	Timeout time.Duration
}
