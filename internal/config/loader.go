package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and an optional config file into a
// Config. File settings are applied first, then flag overrides.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// With no arguments and no config file there is nothing to run.
	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}

	cfg := Default()
	cfg.ConfigFile = configPath

	if configPath != "" {
		fileViper := viper.New()
		fileViper.SetConfigFile(configPath)
		if err := fileViper.ReadInConfig(); err != nil {
			return nil, err
		}
		decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		))
		if err := fileViper.Unmarshal(cfg, decodeHook); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.Method = strings.ToUpper(strings.TrimSpace(cfg.Method))
	if cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}

	return cfg, nil
}

// applyFlagOverrides layers explicitly-set flags over file settings.
func applyFlagOverrides(cfg *Config, flags *pflag.FlagSet) error {
	if flags.Changed("target") {
		cfg.TargetURL, _ = flags.GetString("target")
	}
	if flags.Changed("method") {
		cfg.Method, _ = flags.GetString("method")
	}
	if flags.Changed("header") {
		values, _ := flags.GetStringSlice("header")
		headers, err := parseKeyValues(values)
		if err != nil {
			return fmt.Errorf("invalid --header: %w", err)
		}
		cfg.Headers = headers
	}
	if flags.Changed("form") {
		values, _ := flags.GetStringSlice("form")
		form, err := parseKeyValues(values)
		if err != nil {
			return fmt.Errorf("invalid --form: %w", err)
		}
		cfg.Form = form
	}
	if flags.Changed("backends") {
		cfg.Backends, _ = flags.GetStringSlice("backends")
	}
	if flags.Changed("count") {
		cfg.Count, _ = flags.GetInt("count")
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("rate") {
		cfg.Rate, _ = flags.GetInt("rate")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("batch-timeout") {
		cfg.BatchTimeout, _ = flags.GetDuration("batch-timeout")
	}
	if flags.Changed("h2c") {
		cfg.H2C, _ = flags.GetBool("h2c")
	}
	if flags.Changed("check") {
		cfg.Checks, _ = flags.GetStringArray("check")
	}
	if flags.Changed("threshold") {
		cfg.Thresholds, _ = flags.GetStringArray("threshold")
	}
	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("output-file") {
		cfg.OutputFile, _ = flags.GetString("output-file")
	}
	if flags.Changed("html-output") {
		cfg.HTMLOutput, _ = flags.GetString("html-output")
	}
	if flags.Changed("log-errors") {
		cfg.LogErrors, _ = flags.GetBool("log-errors")
	}
	if flags.Changed("otlp-endpoint") {
		cfg.Tracing.Endpoint, _ = flags.GetString("otlp-endpoint")
	}
	if flags.Changed("otlp-protocol") {
		cfg.Tracing.Protocol, _ = flags.GetString("otlp-protocol")
	}
	if flags.Changed("otlp-insecure") {
		cfg.Tracing.Insecure, _ = flags.GetBool("otlp-insecure")
	}
	if flags.Changed("trace-sample-rate") {
		cfg.Tracing.SampleRate, _ = flags.GetFloat64("trace-sample-rate")
	}
	return nil
}

// parseKeyValues turns repeated key=value flag values into a map.
func parseKeyValues(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, value := range values {
		key, val, found := strings.Cut(value, "=")
		key = strings.TrimSpace(key)
		if !found || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", value)
		}
		out[key] = val
	}
	return out, nil
}
