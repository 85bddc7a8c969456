// Package adapter wraps concrete HTTP client backends behind a uniform
// request-issuing capability so the harness can compare them.
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/torosent/clientrace/internal/workload"
)

// Response summarizes a completed HTTP exchange. Body is populated only when
// the adapter was built with CaptureBody; Bytes always reflects the full
// response size.
type Response struct {
	StatusCode int
	Bytes      int64
	Body       []byte
}

// StatusError represents an HTTP response with an error status code.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Adapter issues requests through one concrete HTTP client backend.
// Implementations must tolerate concurrent Issue calls; an underlying
// connection pool is shared by all in-flight requests. Close releases held
// connections and is idempotent.
type Adapter interface {
	Name() string
	Issue(ctx context.Context, req workload.Request) (Response, error)
	Close() error
}

// Options configure how a backend is constructed.
type Options struct {
	// Timeout applies per request; zero means no client-level timeout.
	Timeout time.Duration
	// Headers are added to every request.
	Headers map[string]string
	// CaptureBody retains up to a bounded prefix of each response body so
	// callers can run content checks against it.
	CaptureBody bool
	// H2C enables cleartext HTTP/2 for backends that support it.
	H2C bool
}
