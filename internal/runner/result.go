package runner

import "time"

// Summary is the outcome of a single request: either a completed exchange or
// a recorded failure. Every dispatched request produces exactly one Summary.
type Summary struct {
	StatusCode int           `json:"status_code,omitempty"`
	Elapsed    time.Duration `json:"-"`
	Bytes      int64         `json:"bytes"`
	Kind       ErrorKind     `json:"error,omitempty"`
	Cause      string        `json:"cause,omitempty"`

	// JSON-friendly millisecond field.
	ElapsedMs float64 `json:"elapsed_ms"`
}

// OK reports whether the request completed without a recorded failure.
func (s Summary) OK() bool { return s.Kind == "" }

// BatchResult holds the outcomes of one batch run against one backend.
// Results is index-aligned with the request sequence that produced it.
type BatchResult struct {
	Adapter string        `json:"adapter"`
	Results []Summary     `json:"results"`
	Elapsed time.Duration `json:"-"`

	ElapsedMs float64 `json:"elapsed_ms"`
}
