// Package check evaluates response expectations against completed requests.
// A failed expectation is recorded against the request like any other
// failure; it never aborts the batch.
package check

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies what part of the response an expectation inspects.
type Kind string

const (
	KindStatus Kind = "status"
	KindJSON   Kind = "json"
)

// Check is a single parsed expectation.
type Check struct {
	Kind Kind
	Path string // gjson path for KindJSON
	Want string
	Raw  string // original expression for display
}

// Failure reports an expectation that did not hold.
type Failure struct {
	Expr string
	Got  string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("check %q failed: got %q", f.Expr, f.Got)
}

// Parse converts expressions of the form "status=200" or "json:path=value"
// into checks.
func Parse(exprs []string) ([]Check, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	checks := make([]Check, 0, len(exprs))
	for _, expr := range exprs {
		c, err := parseOne(expr)
		if err != nil {
			return nil, err
		}
		checks = append(checks, c)
	}
	return checks, nil
}

func parseOne(expr string) (Check, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return Check{}, fmt.Errorf("empty check expression")
	}

	if rest, ok := strings.CutPrefix(trimmed, "json:"); ok {
		path, want, found := strings.Cut(rest, "=")
		if !found || strings.TrimSpace(path) == "" {
			return Check{}, fmt.Errorf("invalid json check %q: want json:path=value", expr)
		}
		return Check{Kind: KindJSON, Path: strings.TrimSpace(path), Want: want, Raw: trimmed}, nil
	}

	if rest, ok := strings.CutPrefix(trimmed, "status="); ok {
		if _, err := strconv.Atoi(strings.TrimSpace(rest)); err != nil {
			return Check{}, fmt.Errorf("invalid status check %q: %w", expr, err)
		}
		return Check{Kind: KindStatus, Want: strings.TrimSpace(rest), Raw: trimmed}, nil
	}

	return Check{}, fmt.Errorf("unsupported check %q: want status=CODE or json:path=value", expr)
}

// Validator applies a set of checks to responses.
type Validator struct {
	checks []Check
}

// NewValidator builds a validator; with no checks it accepts everything.
func NewValidator(checks []Check) *Validator {
	return &Validator{checks: checks}
}

// NeedsBody reports whether any check inspects the response body, so callers
// know to capture it.
func (v *Validator) NeedsBody() bool {
	if v == nil {
		return false
	}
	for _, c := range v.checks {
		if c.Kind == KindJSON {
			return true
		}
	}
	return false
}

// Validate returns a *Failure describing the first expectation that does not
// hold, or nil when all pass.
func (v *Validator) Validate(status int, body []byte) error {
	if v == nil {
		return nil
	}
	for _, c := range v.checks {
		switch c.Kind {
		case KindStatus:
			got := strconv.Itoa(status)
			if got != c.Want {
				return &Failure{Expr: c.Raw, Got: got}
			}
		case KindJSON:
			result := gjson.GetBytes(body, c.Path)
			if !result.Exists() {
				return &Failure{Expr: c.Raw, Got: "<missing>"}
			}
			if result.String() != c.Want {
				return &Failure{Expr: c.Raw, Got: result.String()}
			}
		}
	}
	return nil
}
