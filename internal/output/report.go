package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/torosent/clientrace/internal/harness"
	"github.com/torosent/clientrace/internal/metrics"
	"github.com/torosent/clientrace/internal/threshold"
)

// PrintReport outputs a human-readable comparison report.
func PrintReport(w io.Writer, report *harness.Report) {
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	fmt.Fprintf(w, "\n%s\n", bold("--- Client Comparison Results ---"))
	fmt.Fprintf(w, "Run ID:            %s\n", report.RunID)
	fmt.Fprintf(w, "Target:            %s\n", report.Target)
	fmt.Fprintf(w, "Requests/backend:  %d\n", report.Count)
	fmt.Fprintf(w, "Started:           %s\n", report.StartedAt.Format(time.RFC3339))

	fastest := fastestBackend(report)
	for _, res := range report.Results {
		fmt.Fprintf(w, "\n%s", bold(res.Name))
		if res.Name == fastest {
			fmt.Fprintf(w, " %s", green("(fastest p95)"))
		}
		fmt.Fprintln(w)

		if res.Failed() {
			fmt.Fprintf(w, "  %s\n", red("FAILED: "+res.Error))
			continue
		}
		printStats(w, res.Stats, red)
	}
	fmt.Fprintln(w)
}

func printStats(w io.Writer, stats *metrics.Stats, red func(...interface{}) string) {
	fmt.Fprintf(w, "  Total Requests:  %d\n", stats.Count)
	fmt.Fprintf(w, "  Successful:      %d\n", stats.Successes)
	if stats.Failures > 0 {
		fmt.Fprintf(w, "  Failed:          %s\n", red(stats.Failures))
	} else {
		fmt.Fprintf(w, "  Failed:          %d\n", stats.Failures)
	}
	fmt.Fprintf(w, "  Duration:        %s\n", stats.Duration)
	fmt.Fprintf(w, "  Requests/sec:    %.2f\n", stats.RequestsPerSec)
	fmt.Fprintln(w, "  Latency:")
	fmt.Fprintf(w, "    Min:           %s\n", stats.MinLatency)
	fmt.Fprintf(w, "    Max:           %s\n", stats.MaxLatency)
	fmt.Fprintf(w, "    Mean:          %s\n", stats.MeanLatency)
	fmt.Fprintf(w, "    P50:           %s\n", stats.P50Latency)
	fmt.Fprintf(w, "    P95:           %s\n", stats.P95Latency)
	fmt.Fprintf(w, "    P99:           %s\n", stats.P99Latency)

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "  Errors:")
		kinds := make([]string, 0, len(stats.Errors))
		for kind := range stats.Errors {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			fmt.Fprintf(w, "    %s: %d\n", kind, stats.Errors[kind])
		}
	}
}

// PrintThresholds outputs threshold evaluation results, failures in red.
func PrintThresholds(w io.Writer, results []threshold.Result) {
	if len(results) == 0 {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(w, "%s\n", bold("Thresholds:"))
	for _, r := range results {
		if r.Pass {
			fmt.Fprintf(w, "  %s\n", r.Message)
		} else {
			fmt.Fprintf(w, "  %s\n", red(r.Message))
		}
	}
	fmt.Fprintln(w)
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report *harness.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// PrintYAMLReport outputs a YAML-formatted report.
func PrintYAMLReport(w io.Writer, report *harness.Report) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(report)
}

// fastestBackend returns the name of the backend with the lowest P95 latency,
// or "" when no backend produced stats. Ties keep the earlier backend.
func fastestBackend(report *harness.Report) string {
	name := ""
	var best time.Duration
	for _, res := range report.Results {
		if res.Failed() || res.Stats == nil || res.Stats.Successes == 0 {
			continue
		}
		if name == "" || res.Stats.P95Latency < best {
			name = res.Name
			best = res.Stats.P95Latency
		}
	}
	return name
}
