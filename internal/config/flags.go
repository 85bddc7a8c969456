package config

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "clientrace",
		Short:         "Compare HTTP client backends under concurrent load",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Request flags
	flags.String("target", "", "Target URL to benchmark")
	flags.String("method", "GET", "HTTP method to use")
	flags.StringSlice("header", nil, "Additional request header in key=value form")
	flags.StringSlice("form", nil, "Form body field in key=value form (sent URL-encoded)")

	// Comparison flags
	flags.StringSlice("backends", []string{"default"}, "Client backends to compare (default, http1, http2)")
	flags.IntP("count", "n", 100, "Requests to issue per backend")
	flags.IntP("concurrency", "c", 0, "Max in-flight requests per batch (0 means unbounded)")
	flags.IntP("rate", "r", 0, "Requests per second limit (0 means unlimited)")
	flags.Duration("timeout", 30*time.Second, "Per-request timeout")
	flags.Duration("batch-timeout", 0, "Deadline for a whole batch (0 means none)")
	flags.Bool("h2c", false, "Use cleartext HTTP/2 for the http2 backend")

	// Validation flags
	flags.StringArray("check", nil, "Response expectation: status=CODE or json:path=value (repeatable)")
	flags.StringArray("threshold", nil, "Performance assertion, e.g. 'latency:p95 < 500' (repeatable)")

	// Output flags
	flags.String("output", OutputText, "Report format: text, json, or yaml")
	flags.String("output-file", "", "Write the report to a file instead of stdout")
	flags.String("html-output", "", "Generate an HTML report to the specified file path")
	flags.Bool("log-errors", false, "Log each failed request to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP endpoint for span export (empty disables tracing)")
	flags.String("otlp-protocol", "", "OTLP protocol: grpc or http")
	flags.Bool("otlp-insecure", false, "Disable TLS for OTLP export")
	flags.Float64("trace-sample-rate", 0, "Trace sampling ratio (0 means full sampling)")
}

func displayHelp(cmd *cobra.Command) {
	_ = cmd.Help()
}
