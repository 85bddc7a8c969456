package output

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/torosent/clientrace/internal/threshold"
)

func TestGenerateHTMLReport(t *testing.T) {
	report := sampleReport()
	thresholds := []threshold.Result{
		{
			Threshold: threshold.Threshold{Raw: "latency:p95 < 500"},
			Backend:   "default",
			Actual:    30.0,
			Pass:      true,
		},
		{
			Threshold: threshold.Threshold{Raw: "failed:rate < 0.01"},
			Backend:   "http1",
			Actual:    0.05,
			Pass:      false,
		},
	}

	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, report, thresholds); err != nil {
		t.Fatalf("GenerateHTMLReport: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		"Clientrace Comparison Report",
		report.RunID,
		"http://localhost:8080/ping",
		">default<",
		">http1<",
		"initialize backend: boom",
		"Thresholds (1/2 passed)",
		"latency:p95 &lt; 500",
		">PASS<",
		">FAIL<",
		"connection_failure",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in HTML output", want)
		}
	}
}

func TestGenerateHTMLReportWithoutThresholds(t *testing.T) {
	var buf bytes.Buffer
	if err := GenerateHTMLReport(&buf, sampleReport(), nil); err != nil {
		t.Fatalf("GenerateHTMLReport: %v", err)
	}
	if strings.Contains(buf.String(), "Thresholds (") {
		t.Error("Expected no thresholds section without results")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.html")

	err := WriteFile(path, func(w io.Writer) error {
		return GenerateHTMLReport(w, sampleReport(), nil)
	})
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "<!DOCTYPE html>") {
		t.Error("Expected rendered HTML in file")
	}
	if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
		t.Error("Expected lock file removed after write")
	}
}

func TestWriteFileRenderError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")

	err := WriteFile(path, func(io.Writer) error {
		return os.ErrInvalid
	})
	if err == nil {
		t.Fatal("Expected render error to propagate")
	}
}
