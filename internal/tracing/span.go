package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/workload"
)

// StartBatchSpan starts a span covering one backend's entire batch.
func StartBatchSpan(ctx context.Context, tracer trace.Tracer, backend, target string) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "batch "+backend,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("clientrace.backend", backend),
	)
	if target != "" {
		span.SetAttributes(attribute.String("url.full", target))
	}
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// tracedAdapter decorates a backend adapter with a span per request.
type tracedAdapter struct {
	inner  adapter.Adapter
	tracer trace.Tracer
}

// WrapAdapter returns an adapter that records a client span around every
// issued request. A nil tracer returns the adapter unchanged.
func WrapAdapter(inner adapter.Adapter, tracer trace.Tracer) adapter.Adapter {
	if tracer == nil {
		return inner
	}
	return &tracedAdapter{inner: inner, tracer: tracer}
}

func (t *tracedAdapter) Name() string { return t.inner.Name() }

func (t *tracedAdapter) Issue(ctx context.Context, req workload.Request) (adapter.Response, error) {
	ctx, span := t.tracer.Start(ctx, req.Method+" request",
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.full", req.URL),
		attribute.String("clientrace.backend", t.inner.Name()),
	)

	resp, err := t.inner.Issue(ctx, req)

	attrs := []attribute.KeyValue{}
	if resp.StatusCode > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", resp.StatusCode))
	}
	EndSpan(span, err, attrs...)
	return resp, err
}

func (t *tracedAdapter) Close() error { return t.inner.Close() }
