package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/torosent/clientrace/internal/config"
)

func validConfig() *config.Config {
	cfg := config.Default()
	cfg.TargetURL = "https://example.com"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"missing target", func(c *config.Config) { c.TargetURL = "" }, "target URL is required"},
		{"bad scheme", func(c *config.Config) { c.TargetURL = "ftp://example.com" }, "http or https"},
		{"empty method", func(c *config.Config) { c.Method = "  " }, "method"},
		{"no backends", func(c *config.Config) { c.Backends = nil }, "backend"},
		{"negative count", func(c *config.Config) { c.Count = -1 }, "count"},
		{"negative concurrency", func(c *config.Config) { c.Concurrency = -2 }, "concurrency"},
		{"negative rate", func(c *config.Config) { c.Rate = -1 }, "rate"},
		{"negative timeout", func(c *config.Config) { c.Timeout = -time.Second }, "timeout"},
		{"bad output", func(c *config.Config) { c.Output = "xml" }, "output format"},
		{"duplicate backend", func(c *config.Config) { c.Backends = []string{"default", "default"} }, "more than once"},
		{"blank backend", func(c *config.Config) { c.Backends = []string{" "} }, "backend name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateZeroCountAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Count = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("count 0 should be valid: %v", err)
	}
}

func TestDefaultValues(t *testing.T) {
	cfg := config.Default()
	if cfg.Method != "GET" {
		t.Errorf("default method %q", cfg.Method)
	}
	if cfg.Count != 100 {
		t.Errorf("default count %d", cfg.Count)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("default timeout %s", cfg.Timeout)
	}
	if len(cfg.Backends) != 1 || cfg.Backends[0] != "default" {
		t.Errorf("default backends %v", cfg.Backends)
	}
	if cfg.Output != config.OutputText {
		t.Errorf("default output %q", cfg.Output)
	}
}
