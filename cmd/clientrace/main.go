package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/clientrace/internal/adapter"
	"github.com/torosent/clientrace/internal/check"
	"github.com/torosent/clientrace/internal/config"
	"github.com/torosent/clientrace/internal/harness"
	"github.com/torosent/clientrace/internal/output"
	"github.com/torosent/clientrace/internal/runner"
	"github.com/torosent/clientrace/internal/threshold"
	"github.com/torosent/clientrace/internal/tracing"
	"github.com/torosent/clientrace/internal/workload"
)

const shutdownTimeout = 5 * time.Second

type stderrFailureLogger struct {
	mu sync.Mutex
}

func (l *stderrFailureLogger) LogFailure(backend string, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[clientrace] %s request failed (%s): %v\n", backend, runner.Classify(err), err)
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	checks, err := check.Parse(cfg.Checks)
	if err != nil {
		return err
	}
	var validator *check.Validator
	if len(checks) > 0 {
		validator = check.NewValidator(checks)
	}

	thresholds, err := threshold.ParseMultiple(cfg.Thresholds)
	if err != nil {
		return err
	}
	evaluator := threshold.NewEvaluator(thresholds)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: tracing shutdown: %v\n", err)
		}
	}()
	var tracer trace.Tracer
	if provider.Enabled() {
		tracer = provider.Tracer()
	}

	backends := buildBackends(cfg, validator, tracer)

	gen := workload.NewRepeat(workload.Request{
		Method: cfg.Method,
		URL:    cfg.TargetURL,
		Body:   cfg.Form,
	})

	runnerOpts := runner.Options{
		Concurrency:   cfg.Concurrency,
		Timeout:       cfg.BatchTimeout,
		RatePerSecond: cfg.Rate,
	}
	if validator != nil {
		runnerOpts.Validator = validator
	}

	report := harness.Compare(ctx, backends, gen, harness.Options{
		Count:  cfg.Count,
		Target: cfg.TargetURL,
		Runner: runnerOpts,
		Tracer: tracer,
	})

	var thresholdResults []threshold.Result
	for _, res := range report.Results {
		if res.Stats == nil {
			continue
		}
		thresholdResults = append(thresholdResults, evaluator.Evaluate(res.Name, *res.Stats)...)
	}

	if err := writeReports(cfg, report, thresholdResults); err != nil {
		return err
	}

	if failures := report.InitFailures(); failures > 0 {
		return fmt.Errorf("%d backend(s) failed to initialize", failures)
	}
	failedThresholds := 0
	for _, r := range thresholdResults {
		if !r.Pass {
			failedThresholds++
		}
	}
	if failedThresholds > 0 {
		return fmt.Errorf("%d threshold(s) failed", failedThresholds)
	}
	return nil
}

// buildBackends defers adapter construction so an unknown or broken backend
// shows up as a per-backend report entry instead of aborting the whole run.
func buildBackends(cfg *config.Config, validator *check.Validator, tracer trace.Tracer) []harness.Backend {
	var logger *stderrFailureLogger
	if cfg.LogErrors {
		logger = &stderrFailureLogger{}
	}

	backends := make([]harness.Backend, 0, len(cfg.Backends))
	for _, name := range cfg.Backends {
		name := name
		backends = append(backends, harness.Backend{
			Name: name,
			New: func() (adapter.Adapter, error) {
				ad, err := adapter.Build(name, adapter.Options{
					Timeout:     cfg.Timeout,
					Headers:     cfg.Headers,
					CaptureBody: validator.NeedsBody(),
					H2C:         cfg.H2C,
				})
				if err != nil {
					return nil, err
				}
				if tracer != nil {
					ad = tracing.WrapAdapter(ad, tracer)
				}
				if logger != nil {
					ad = withFailureLogging(ad, logger)
				}
				return ad, nil
			},
		})
	}
	return backends
}

func writeReports(cfg *config.Config, report *harness.Report, thresholdResults []threshold.Result) error {
	render := func(w io.Writer) error {
		switch cfg.Output {
		case config.OutputJSON:
			return output.PrintJSONReport(w, report)
		case config.OutputYAML:
			return output.PrintYAMLReport(w, report)
		default:
			output.PrintReport(w, report)
			output.PrintThresholds(w, thresholdResults)
			return nil
		}
	}

	if err := render(os.Stdout); err != nil {
		return err
	}
	if cfg.OutputFile != "" {
		if err := output.WriteFile(cfg.OutputFile, render); err != nil {
			return err
		}
	}
	if cfg.HTMLOutput != "" {
		err := output.WriteFile(cfg.HTMLOutput, func(w io.Writer) error {
			return output.GenerateHTMLReport(w, report, thresholdResults)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
