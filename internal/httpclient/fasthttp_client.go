package httpclient

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
)

const defaultTimeout = 10 * time.Second

type fasthttpClient struct {
	client  *fasthttp.Client
	timeout time.Duration
}

// NewFastHTTPClient returns the default Client implementation, backed by a
// single shared fasthttp.Client (fasthttp recommends reusing one client
// across requests to benefit from its connection pool).
func NewFastHTTPClient(opts Options) Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &fasthttpClient{
		client:  &fasthttp.Client{},
		timeout: timeout,
	}
}

func (c *fasthttpClient) Get(ctx context.Context, url string) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return &Response{StatusCode: resp.StatusCode(), Body: body}, nil
}

func (c *fasthttpClient) PostPlainText(ctx context.Context, url string, payload []byte) (*Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("text/plain; charset=utf-8")
	req.SetBody(payload)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return &Response{StatusCode: resp.StatusCode(), Body: body}, nil
}

func (c *fasthttpClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	deadline, ok := ctx.Deadline()
	if ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.DoTimeout(req, resp, c.timeout)
}
