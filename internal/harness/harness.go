// Package harness orchestrates the comparison: it runs each backend over the
// same workload, one backend at a time, and assembles the final report.
package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/metrics"
	"github.com/torosent/clientrace/internal/runner"
	"github.com/torosent/clientrace/internal/tracing"
	"github.com/torosent/clientrace/internal/workload"
)

// Backend names a client backend and knows how to construct it. Construction
// is deferred so an initialization failure surfaces as a per-backend report
// entry instead of aborting the comparison.
type Backend struct {
	Name string
	New  func() (adapter.Adapter, error)
}

// AdapterResult is one backend's entry in the comparison report: either
// aggregated stats or an explicit failure, never a silent gap.
type AdapterResult struct {
	Name  string         `json:"name" yaml:"name"`
	Stats *metrics.Stats `json:"stats,omitempty" yaml:"stats,omitempty"`
	Error string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the backend never produced stats.
func (r AdapterResult) Failed() bool { return r.Error != "" }

// Report is the outcome of one comparison run.
type Report struct {
	RunID     string          `json:"run_id" yaml:"run_id"`
	StartedAt time.Time       `json:"started_at" yaml:"started_at"`
	Target    string          `json:"target" yaml:"target"`
	Count     int             `json:"count" yaml:"count"`
	Results   []AdapterResult `json:"results" yaml:"results"`
}

// InitFailures counts backends that failed before issuing any request.
func (r *Report) InitFailures() int {
	failures := 0
	for _, res := range r.Results {
		if res.Failed() {
			failures++
		}
	}
	return failures
}

// Options configure a comparison run.
type Options struct {
	Count  int            // requests per backend
	Target string         // benchmarked URL, recorded in the report
	Runner runner.Options // shared batch options
	Tracer trace.Tracer   // optional; nil disables span creation
}

// Compare runs every backend's batch sequentially over the same generated
// workload. A backend's batch fully completes, and its adapter is closed,
// before the next backend starts, so one backend's resource use cannot skew
// another's timing window. The report lists every requested backend.
func Compare(ctx context.Context, backends []Backend, gen workload.Generator, opts Options) *Report {
	if ctx == nil {
		ctx = context.Background()
	}

	report := &Report{
		RunID:     ulid.Make().String(),
		StartedAt: time.Now(),
		Target:    opts.Target,
		Count:     opts.Count,
		Results:   make([]AdapterResult, 0, len(backends)),
	}
	for _, backend := range backends {
		report.Results = append(report.Results, runBackend(ctx, backend, gen, opts))
	}
	return report
}

func runBackend(ctx context.Context, backend Backend, gen workload.Generator, opts Options) AdapterResult {
	ad, err := backend.New()
	if err != nil {
		return AdapterResult{
			Name:  backend.Name,
			Error: fmt.Sprintf("initialize backend: %v", err),
		}
	}
	// Scoped release: the adapter is closed before the next backend starts,
	// whatever happened during the batch.
	defer ad.Close()

	var span trace.Span
	if opts.Tracer != nil {
		ctx, span = tracing.StartBatchSpan(ctx, opts.Tracer, backend.Name, opts.Target)
	}

	batch := runner.Run(ctx, ad, gen.Generate(opts.Count), opts.Runner)
	stats := metrics.Aggregate(batch)

	if span != nil {
		tracing.EndSpan(span, nil,
			attribute.Int64("clientrace.requests", stats.Count),
			attribute.Int64("clientrace.failures", stats.Failures),
		)
	}

	return AdapterResult{Name: backend.Name, Stats: &stats}
}
