package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/config"
	"github.com/torosent/clientrace/internal/workload"
)

type recordingLogger struct {
	failures []string
}

func (l *recordingLogger) LogFailure(backend string, err error) {
	l.failures = append(l.failures, backend+": "+err.Error())
}

type stubAdapter struct {
	name string
	err  error
}

func (a *stubAdapter) Name() string { return a.name }
func (a *stubAdapter) Issue(context.Context, workload.Request) (adapter.Response, error) {
	return adapter.Response{StatusCode: 200}, a.err
}
func (a *stubAdapter) Close() error { return nil }

func TestBuildBackendsUnknownName(t *testing.T) {
	cfg := config.Default()
	cfg.Backends = []string{"bogus"}

	backends := buildBackends(cfg, nil, nil)
	if len(backends) != 1 {
		t.Fatalf("len(backends) = %d, want 1", len(backends))
	}
	if backends[0].Name != "bogus" {
		t.Errorf("Name = %q, want bogus", backends[0].Name)
	}
	if _, err := backends[0].New(); err == nil {
		t.Error("Expected construction error for unknown backend")
	}
}

func TestBuildBackendsConstructsBuiltins(t *testing.T) {
	cfg := config.Default()
	cfg.Backends = []string{"default", "http1", "http2"}
	cfg.Timeout = time.Second

	for _, backend := range buildBackends(cfg, nil, nil) {
		ad, err := backend.New()
		if err != nil {
			t.Fatalf("New(%s): %v", backend.Name, err)
		}
		if ad.Name() != backend.Name {
			t.Errorf("adapter name = %q, want %q", ad.Name(), backend.Name)
		}
		ad.Close()
	}
}

func TestLoggingAdapterReportsFailures(t *testing.T) {
	logger := &recordingLogger{}
	boom := errors.New("boom")
	wrapped := withFailureLogging(&stubAdapter{name: "default", err: boom}, logger)

	_, err := wrapped.Issue(context.Background(), workload.Request{Method: "GET", URL: "http://x"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(logger.failures) != 1 {
		t.Fatalf("logged %d failures, want 1", len(logger.failures))
	}
}

func TestLoggingAdapterSilentOnSuccess(t *testing.T) {
	logger := &recordingLogger{}
	wrapped := withFailureLogging(&stubAdapter{name: "default"}, logger)

	if _, err := wrapped.Issue(context.Background(), workload.Request{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(logger.failures) != 0 {
		t.Errorf("logged %d failures, want 0", len(logger.failures))
	}
}

func TestWithFailureLoggingNilLogger(t *testing.T) {
	inner := &stubAdapter{name: "default"}
	if got := withFailureLogging(inner, nil); got != adapter.Adapter(inner) {
		t.Error("Expected nil logger to return the inner adapter unchanged")
	}
}
