package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/torosent/clientrace/internal/config"
)

func TestLoadFlags(t *testing.T) {
	loader := config.NewLoader()
	cfg, err := loader.Load([]string{
		"--target", "https://example.com",
		"--backends", "default,http1,http2",
		"-n", "250",
		"-c", "16",
		"--timeout", "5s",
		"--batch-timeout", "2m",
		"--method", "post",
		"--form", "key=value",
		"--header", "X-Token=abc",
		"--check", "status=200",
		"--threshold", "latency:p95 < 500",
		"--output", "json",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TargetURL != "https://example.com" {
		t.Errorf("target %q", cfg.TargetURL)
	}
	if len(cfg.Backends) != 3 {
		t.Errorf("backends %v", cfg.Backends)
	}
	if cfg.Count != 250 || cfg.Concurrency != 16 {
		t.Errorf("count=%d concurrency=%d", cfg.Count, cfg.Concurrency)
	}
	if cfg.Timeout != 5*time.Second || cfg.BatchTimeout != 2*time.Minute {
		t.Errorf("timeout=%s batch=%s", cfg.Timeout, cfg.BatchTimeout)
	}
	if cfg.Method != "POST" {
		t.Errorf("method not upper-cased: %q", cfg.Method)
	}
	if cfg.Form["key"] != "value" {
		t.Errorf("form %v", cfg.Form)
	}
	if cfg.Headers["X-Token"] != "abc" {
		t.Errorf("headers %v", cfg.Headers)
	}
	if len(cfg.Checks) != 1 || len(cfg.Thresholds) != 1 {
		t.Errorf("checks=%v thresholds=%v", cfg.Checks, cfg.Thresholds)
	}
	if cfg.Output != config.OutputJSON {
		t.Errorf("output %q", cfg.Output)
	}
}

func TestLoadNoArgsShowsHelp(t *testing.T) {
	_, err := config.NewLoader().Load(nil)
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadHelpFlag(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--help"})
	if !errors.Is(err, config.ErrHelpRequested) {
		t.Fatalf("expected ErrHelpRequested, got %v", err)
	}
}

func TestLoadInvalidHeader(t *testing.T) {
	_, err := config.NewLoader().Load([]string{
		"--target", "https://example.com",
		"--header", "no-equals-sign",
	})
	if err == nil {
		t.Fatal("expected error for malformed header")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	content := `target: https://example.com/api
method: POST
backends:
  - default
  - http2
count: 500
concurrency: 32
timeout: 10s
form:
  key: value
thresholds:
  - "latency:p99 < 1000"
tracing:
  endpoint: localhost:4317
  insecure: true
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.TargetURL != "https://example.com/api" {
		t.Errorf("target %q", cfg.TargetURL)
	}
	if cfg.Method != "POST" {
		t.Errorf("method %q", cfg.Method)
	}
	if len(cfg.Backends) != 2 || cfg.Backends[1] != "http2" {
		t.Errorf("backends %v", cfg.Backends)
	}
	if cfg.Count != 500 || cfg.Concurrency != 32 {
		t.Errorf("count=%d concurrency=%d", cfg.Count, cfg.Concurrency)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("timeout %s", cfg.Timeout)
	}
	if cfg.Form["key"] != "value" {
		t.Errorf("form %v", cfg.Form)
	}
	if cfg.Tracing.Endpoint != "localhost:4317" || !cfg.Tracing.Insecure {
		t.Errorf("tracing %+v", cfg.Tracing)
	}
}

func TestLoadFlagOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bench.yaml")
	if err := os.WriteFile(path, []byte("target: https://file.example.com\ncount: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.NewLoader().Load([]string{
		"--config", path,
		"--count", "99",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetURL != "https://file.example.com" {
		t.Errorf("file target lost: %q", cfg.TargetURL)
	}
	if cfg.Count != 99 {
		t.Errorf("flag override lost: count=%d", cfg.Count)
	}
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := config.NewLoader().Load([]string{"--config", "/nonexistent/bench.yaml"})
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}
