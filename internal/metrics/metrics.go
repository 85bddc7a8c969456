// Package metrics reduces completed batches into latency and success
// statistics.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"github.com/torosent/clientrace/internal/runner"
)

// Stats represents aggregated metrics for one backend's batch.
type Stats struct {
	Count          int64         `json:"count" yaml:"count"`
	Successes      int64         `json:"successes" yaml:"successes"`
	Failures       int64         `json:"failures" yaml:"failures"`
	MinLatency     time.Duration `json:"-" yaml:"-"`
	MaxLatency     time.Duration `json:"-" yaml:"-"`
	MeanLatency    time.Duration `json:"-" yaml:"-"`
	P50Latency     time.Duration `json:"-" yaml:"-"`
	P95Latency     time.Duration `json:"-" yaml:"-"`
	P99Latency     time.Duration `json:"-" yaml:"-"`
	Duration       time.Duration `json:"-" yaml:"-"`
	RequestsPerSec float64       `json:"requests_per_sec" yaml:"requests_per_sec"`

	// Serialization-friendly millisecond fields.
	MinLatencyMs  float64        `json:"min_latency_ms" yaml:"min_latency_ms"`
	MaxLatencyMs  float64        `json:"max_latency_ms" yaml:"max_latency_ms"`
	MeanLatencyMs float64        `json:"mean_latency_ms" yaml:"mean_latency_ms"`
	P50LatencyMs  float64        `json:"p50_latency_ms" yaml:"p50_latency_ms"`
	P95LatencyMs  float64        `json:"p95_latency_ms" yaml:"p95_latency_ms"`
	P99LatencyMs  float64        `json:"p99_latency_ms" yaml:"p99_latency_ms"`
	DurationMs    float64        `json:"duration_ms" yaml:"duration_ms"`
	Errors        map[string]int `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Aggregate reduces a batch into Stats. Latency distribution and mean cover
// successful requests only; failures are counted and broken down by kind.
// The result is deterministic for identical input.
func Aggregate(batch runner.BatchResult) Stats {
	// Track latencies from 1µs up to 60s with 3 significant figures.
	hist := hdrhistogram.New(1, 60_000_000, 3)

	stats := Stats{Count: int64(len(batch.Results))}
	var sumLatency time.Duration
	errorsByKind := make(map[string]int)

	for _, s := range batch.Results {
		if !s.OK() {
			stats.Failures++
			errorsByKind[string(s.Kind)]++
			continue
		}
		stats.Successes++
		sumLatency += s.Elapsed

		if stats.MinLatency == 0 || s.Elapsed < stats.MinLatency {
			stats.MinLatency = s.Elapsed
		}
		if s.Elapsed > stats.MaxLatency {
			stats.MaxLatency = s.Elapsed
		}

		us := s.Elapsed.Microseconds()
		if us < hist.LowestTrackableValue() {
			us = hist.LowestTrackableValue()
		}
		if us > hist.HighestTrackableValue() {
			us = hist.HighestTrackableValue()
		}
		_ = hist.RecordValue(us)
	}

	if stats.Successes > 0 {
		stats.MeanLatency = time.Duration(int64(sumLatency) / stats.Successes)
	}
	if hist.TotalCount() > 0 {
		stats.P50Latency = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P95Latency = time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond
		stats.P99Latency = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond
	}

	stats.Duration = batch.Elapsed
	if batch.Elapsed > 0 && stats.Count > 0 {
		stats.RequestsPerSec = float64(stats.Count) / batch.Elapsed.Seconds()
	}
	if len(errorsByKind) > 0 {
		stats.Errors = errorsByKind
	}

	stats.MinLatencyMs = toMillis(stats.MinLatency)
	stats.MaxLatencyMs = toMillis(stats.MaxLatency)
	stats.MeanLatencyMs = toMillis(stats.MeanLatency)
	stats.P50LatencyMs = toMillis(stats.P50Latency)
	stats.P95LatencyMs = toMillis(stats.P95Latency)
	stats.P99LatencyMs = toMillis(stats.P99Latency)
	stats.DurationMs = toMillis(stats.Duration)

	return stats
}

// ErrorRate returns failures as a fraction of total requests.
func (s Stats) ErrorRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Failures) / float64(s.Count)
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
