package protocol

import (
	"context"
	"fmt"

	"github.com/voyago/rumkit/internal/apperror"
	"github.com/voyago/rumkit/internal/config"
	"github.com/voyago/rumkit/internal/httpclient"
)

// Adapter wraps an httpclient.Client with the collector's two operations:
// opening a new session and posting a beacon chunk. Both return the parsed
// ServerConfiguration from the response body alongside the raw status, so
// the sender loop can merge it without re-parsing.
type Adapter struct {
	client  httpclient.Client
	baseURL string
}

// NewAdapter builds a protocol Adapter over baseURL (the beacon endpoint
// configured on the OpenKit instance).
func NewAdapter(client httpclient.Client, baseURL string) *Adapter {
	return &Adapter{client: client, baseURL: baseURL}
}

// Result is the outcome of one collector exchange.
type Result struct {
	StatusCode  int
	ServerConfig *config.ServerConfiguration
}

// NewSession issues the new-session GET (`?type=m&...`) and parses the
// response into a ServerConfiguration.
func (a *Adapter) NewSession(ctx context.Context, query string) (*Result, error) {
	url := fmt.Sprintf("%s?type=m&%s", a.baseURL, query)
	resp, err := a.client.Get(ctx, url)
	if err != nil {
		return nil, apperror.NewTransportError(apperror.CodeCollectorUnreachable, "new-session request failed", err)
	}
	return a.parseResponse(resp)
}

// SendChunk POSTs one beacon chunk and parses the response.
func (a *Adapter) SendChunk(ctx context.Context, query string, chunk []byte) (*Result, error) {
	url := fmt.Sprintf("%s?%s", a.baseURL, query)
	resp, err := a.client.PostPlainText(ctx, url, chunk)
	if err != nil {
		return nil, apperror.NewTransportError(apperror.CodeCollectorUnreachable, "beacon send failed", err)
	}
	return a.parseResponse(resp)
}

func (a *Adapter) parseResponse(resp *httpclient.Response) (*Result, error) {
	if IsErroneousStatus(resp.StatusCode) {
		return &Result{StatusCode: resp.StatusCode}, apperror.NewTransportError(
			apperror.CodeNon2xxResponse,
			fmt.Sprintf("collector returned status %d", resp.StatusCode),
		)
	}

	serverCfg, err := ParseStatusResponse(string(resp.Body))
	if err != nil {
		return &Result{StatusCode: resp.StatusCode}, apperror.NewTransportError(
			apperror.CodeMalformedStatusResp, "failed to parse collector response", err)
	}

	return &Result{StatusCode: resp.StatusCode, ServerConfig: serverCfg}, nil
}
