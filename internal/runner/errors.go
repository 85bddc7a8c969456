package runner

import (
	"context"
	"errors"
	"net"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/check"
)

// ErrorKind is the categorical tag attached to a failed request outcome.
type ErrorKind string

const (
	KindConnectionFailure ErrorKind = "connection_failure"
	KindTimeout           ErrorKind = "timeout"
	KindProtocolError     ErrorKind = "protocol_error"
	KindUnexpectedStatus  ErrorKind = "unexpected_status"
)

// Classify maps a request error to its ErrorKind. Error status codes and
// failed response checks count as unexpected status; deadline and
// cancellation errors count as timeouts; resolvable transport-level failures
// count as connection failures; everything else is a protocol error.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}

	var statusErr *adapter.StatusError
	if errors.As(err, &statusErr) {
		return KindUnexpectedStatus
	}
	var checkFailure *check.Failure
	if errors.As(err, &checkFailure) {
		return KindUnexpectedStatus
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnectionFailure
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindConnectionFailure
	}

	return KindProtocolError
}
