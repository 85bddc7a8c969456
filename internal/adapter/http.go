package adapter

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/http2"

	"github.com/torosent/clientrace/internal/workload"
)

const (
	maxCapturedBodyBytes = 1024 * 1024
	maxErrorBodyBytes    = 1024
)

// idleCloser lets the adapter close pooled connections regardless of the
// concrete transport in use.
type idleCloser interface {
	CloseIdleConnections()
}

// httpAdapter is the shared implementation behind all net/http based
// backends; they differ only in the transport they are built with.
type httpAdapter struct {
	name        string
	client      *http.Client
	transport   idleCloser
	headers     map[string]string
	captureBody bool
	closeOnce   sync.Once
}

func newHTTPAdapter(name string, transport http.RoundTripper, opts Options) *httpAdapter {
	closer, _ := transport.(idleCloser)
	return &httpAdapter{
		name: name,
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		transport:   closer,
		headers:     opts.Headers,
		captureBody: opts.CaptureBody,
	}
}

func (a *httpAdapter) Name() string { return a.name }

// Issue performs one request and drains the response body so the underlying
// connection can be reused. Error status codes are reported as a StatusError
// alongside the populated Response.
func (a *httpAdapter) Issue(ctx context.Context, req workload.Request) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	httpReq, err := a.buildRequest(ctx, req)
	if err != nil {
		return Response{}, err
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	out := Response{StatusCode: resp.StatusCode}

	if a.captureBody {
		captured, readErr := io.ReadAll(io.LimitReader(resp.Body, maxCapturedBodyBytes))
		if readErr != nil {
			return out, readErr
		}
		out.Body = captured
		out.Bytes = int64(len(captured))
	}
	// Drain whatever remains so keep-alive connections are returned to the pool.
	drained, readErr := io.Copy(io.Discard, resp.Body)
	if readErr != nil {
		return out, readErr
	}
	out.Bytes += drained

	if resp.StatusCode >= 400 {
		snippet := out.Body
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return out, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	return out, nil
}

func (a *httpAdapter) buildRequest(ctx context.Context, req workload.Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		form := url.Values{}
		for k, v := range req.Body {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range a.headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// Close releases pooled connections. Safe to call more than once.
func (a *httpAdapter) Close() error {
	a.closeOnce.Do(func() {
		if a.transport != nil {
			a.transport.CloseIdleConnections()
		}
	})
	return nil
}

func newDialer() *net.Dialer {
	return &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
}

// newDefaultTransport mirrors a production-tuned net/http transport: HTTP/2
// negotiated when the server supports it, generous idle pools for reuse.
func newDefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           newDialer().DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}

// newHTTP1Transport pins the connection to HTTP/1.1 by refusing protocol
// upgrades during TLS negotiation.
func newHTTP1Transport() *http.Transport {
	t := newDefaultTransport()
	t.ForceAttemptHTTP2 = false
	t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	return t
}

// newHTTP2Transport builds a dedicated HTTP/2 transport. With h2c enabled it
// speaks cleartext HTTP/2 over a plain TCP dial, which is how local targets
// without TLS are benchmarked.
func newHTTP2Transport(h2c bool) *http2.Transport {
	t := &http2.Transport{}
	if h2c {
		t.AllowHTTP = true
		t.DialTLSContext = func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
			return newDialer().DialContext(ctx, network, addr)
		}
	}
	return t
}
