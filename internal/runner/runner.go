// Package runner dispatches a batch of requests through one backend adapter
// under a bounded concurrency model and collects per-request outcomes.
package runner

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/workload"
)

// Validator inspects a completed response; a non-nil error records the
// request as failed.
type Validator interface {
	Validate(status int, body []byte) error
}

// Options configure a batch run.
type Options struct {
	Concurrency    int           // max in-flight requests (0 means unbounded)
	Timeout        time.Duration // batch deadline (0 means none)
	RatePerSecond  int           // request pacing (0 means unlimited)
	Validator      Validator     // optional response checks
	OnResult       func(index int, s Summary)  // optional per-result hook
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency < 0 {
		o.Concurrency = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst equal to rps to smooth pacing under concurrency.
			return rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// Run dispatches all requests through the adapter concurrently, bounded by
// opts.Concurrency, and waits until every request has produced a Summary.
//
// The returned Results slice preserves request order regardless of
// completion order. A single request's failure never cancels its siblings.
// When opts.Timeout elapses first, still-outstanding requests are marked
// with KindTimeout and the batch returns at the deadline; summaries already
// recorded are preserved.
func Run(ctx context.Context, ad adapter.Adapter, reqs []workload.Request, opts Options) BatchResult {
	opts.normalize()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]Summary, len(reqs))
	if len(reqs) == 0 {
		return BatchResult{Adapter: ad.Name(), Results: results}
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		batchCtx, timeoutCancel = context.WithTimeout(batchCtx, opts.Timeout)
		defer timeoutCancel()
	}

	limiter := opts.LimiterFactory(opts.RatePerSecond)

	var permits chan struct{}
	if opts.Concurrency > 0 {
		permits = make(chan struct{}, opts.Concurrency)
	}

	// record resolves a request slot exactly once; late completions after the
	// deadline sweep are dropped.
	var mu sync.Mutex
	resolved := make([]bool, len(reqs))
	record := func(i int, s Summary) {
		mu.Lock()
		defer mu.Unlock()
		if resolved[i] {
			return
		}
		resolved[i] = true
		results[i] = s
		if opts.OnResult != nil {
			opts.OnResult(i, s)
		}
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			if permits != nil {
				select {
				case permits <- struct{}{}:
					defer func() { <-permits }()
				case <-batchCtx.Done():
					record(i, deadlineSummary())
					return
				}
			}
			if err := limiter.Wait(batchCtx); err != nil {
				record(i, deadlineSummary())
				return
			}

			reqStart := time.Now()
			resp, err := ad.Issue(batchCtx, reqs[i])
			elapsed := time.Since(reqStart)
			if err == nil && opts.Validator != nil {
				err = opts.Validator.Validate(resp.StatusCode, resp.Body)
			}
			record(i, summarize(resp, elapsed, err))
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-batchCtx.Done():
	}
	cancel()

	// Deadline sweep: every slot still unresolved gets a timeout outcome so
	// len(Results) always equals len(reqs). No-op when the batch completed.
	for i := range reqs {
		record(i, deadlineSummary())
	}

	elapsed := time.Since(start)
	return BatchResult{
		Adapter:   ad.Name(),
		Results:   results,
		Elapsed:   elapsed,
		ElapsedMs: float64(elapsed) / float64(time.Millisecond),
	}
}

func summarize(resp adapter.Response, elapsed time.Duration, err error) Summary {
	s := Summary{
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
		ElapsedMs:  float64(elapsed) / float64(time.Millisecond),
		Bytes:      resp.Bytes,
	}
	if err != nil {
		s.Kind = Classify(err)
		s.Cause = err.Error()
	}
	return s
}

func deadlineSummary() Summary {
	return Summary{Kind: KindTimeout, Cause: "batch deadline exceeded"}
}
