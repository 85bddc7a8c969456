package main

import (
	"context"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/workload"
)

type failureLogger interface {
	LogFailure(backend string, err error)
}

type loggingAdapter struct {
	inner  adapter.Adapter
	logger failureLogger
}

// withFailureLogging decorates an adapter so every failed request is handed
// to the logger before the outcome reaches the collector.
func withFailureLogging(inner adapter.Adapter, logger failureLogger) adapter.Adapter {
	if logger == nil {
		return inner
	}
	return &loggingAdapter{inner: inner, logger: logger}
}

func (l *loggingAdapter) Name() string { return l.inner.Name() }

func (l *loggingAdapter) Issue(ctx context.Context, req workload.Request) (adapter.Response, error) {
	resp, err := l.inner.Issue(ctx, req)
	if err != nil {
		l.logger.LogFailure(l.inner.Name(), err)
	}
	return resp, err
}

func (l *loggingAdapter) Close() error { return l.inner.Close() }
