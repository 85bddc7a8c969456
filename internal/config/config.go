// Package config loads and validates the benchmark configuration from
// command-line flags and optional YAML/JSON config files.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/torosent/clientrace/internal/tracing"
)

// Output formats for the comparison report.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds everything a comparison run needs.
type Config struct {
	TargetURL    string            `mapstructure:"target"`
	Method       string            `mapstructure:"method"`
	Headers      map[string]string `mapstructure:"headers"`
	Form         map[string]string `mapstructure:"form"`
	Backends     []string          `mapstructure:"backends"`
	Count        int               `mapstructure:"count"`
	Concurrency  int               `mapstructure:"concurrency"`
	Rate         int               `mapstructure:"rate"`
	Timeout      time.Duration     `mapstructure:"timeout"`
	BatchTimeout time.Duration     `mapstructure:"batch_timeout"`
	Checks       []string          `mapstructure:"checks"`
	Thresholds   []string          `mapstructure:"thresholds"`
	Output       string            `mapstructure:"output"`
	OutputFile   string            `mapstructure:"output_file"`
	HTMLOutput   string            `mapstructure:"html_output"`
	H2C          bool              `mapstructure:"h2c"`
	LogErrors    bool              `mapstructure:"log_errors"`
	Tracing      tracing.Config    `mapstructure:"tracing"`
	ConfigFile   string            `mapstructure:"-"`
}

// Default returns a Config with the baseline values flags are layered onto.
func Default() *Config {
	return &Config{
		Method:   "GET",
		Headers:  map[string]string{},
		Backends: []string{"default"},
		Count:    100,
		Timeout:  30 * time.Second,
		Output:   OutputText,
	}
}

// Validate checks the configuration for contradictions before a run starts.
func (c *Config) Validate() error {
	target := strings.TrimSpace(c.TargetURL)
	if target == "" {
		return fmt.Errorf("target URL is required")
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("invalid target URL %q: %w", target, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("target URL %q must use http or https", target)
	}

	if strings.TrimSpace(c.Method) == "" {
		return fmt.Errorf("method cannot be empty")
	}
	if len(c.Backends) == 0 {
		return fmt.Errorf("at least one backend is required")
	}
	if c.Count < 0 {
		return fmt.Errorf("count cannot be negative, got %d", c.Count)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative, got %d", c.Concurrency)
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate cannot be negative, got %d", c.Rate)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout)
	}
	if c.BatchTimeout < 0 {
		return fmt.Errorf("batch timeout cannot be negative, got %s", c.BatchTimeout)
	}

	switch c.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		return fmt.Errorf("unsupported output format %q (supported: text, json, yaml)", c.Output)
	}

	seen := make(map[string]bool, len(c.Backends))
	for _, backend := range c.Backends {
		name := strings.TrimSpace(backend)
		if name == "" {
			return fmt.Errorf("backend name cannot be empty")
		}
		if seen[name] {
			return fmt.Errorf("backend %q listed more than once", name)
		}
		seen[name] = true
	}

	return nil
}
