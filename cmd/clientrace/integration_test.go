package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/torosent/clientrace/internal/harness"
)

func TestIntegration_CompareBackends(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	reportPath := filepath.Join(t.TempDir(), "report.json")
	err := run([]string{
		"--target", server.URL,
		"--backends", "default,http1",
		"--count", "10",
		"--output", "json",
		"--output-file", reportPath,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := hits.Load(); got != 20 {
		t.Errorf("server saw %d requests, want 20", got)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var report harness.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if len(report.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(report.Results))
	}
	for _, res := range report.Results {
		if res.Failed() {
			t.Errorf("%s failed: %s", res.Name, res.Error)
			continue
		}
		if res.Stats.Count != 10 || res.Stats.Successes != 10 {
			t.Errorf("%s: count=%d successes=%d, want 10/10", res.Name, res.Stats.Count, res.Stats.Successes)
		}
	}
}

func TestIntegration_ThresholdFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := run([]string{
		"--target", server.URL,
		"--count", "5",
		"--threshold", "requests:count > 1000",
	})
	if err == nil {
		t.Fatal("Expected threshold failure to surface as error")
	}
	if !strings.Contains(err.Error(), "threshold") {
		t.Errorf("err = %v, want threshold failure", err)
	}
}

func TestIntegration_UnknownBackendFailsRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := run([]string{
		"--target", server.URL,
		"--backends", "default,bogus",
		"--count", "3",
	})
	if err == nil {
		t.Fatal("Expected init failure to surface as error")
	}
	if !strings.Contains(err.Error(), "failed to initialize") {
		t.Errorf("err = %v, want init failure", err)
	}
}

func TestIntegration_ChecksCountFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ready":false}`))
	}))
	defer server.Close()

	reportPath := filepath.Join(t.TempDir(), "report.json")
	err := run([]string{
		"--target", server.URL,
		"--count", "4",
		"--check", "json:ready=true",
		"--output", "json",
		"--output-file", reportPath,
	})
	// Failed checks mark requests failed but do not flip the exit code.
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var report harness.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("report JSON: %v", err)
	}
	stats := report.Results[0].Stats
	if stats == nil || stats.Failures != 4 {
		t.Fatalf("expected 4 check failures, got %+v", stats)
	}
	if stats.Errors["unexpected_status"] != 4 {
		t.Errorf("Errors = %v, want unexpected_status: 4", stats.Errors)
	}
}

func TestIntegration_InvalidThresholdRejected(t *testing.T) {
	err := run([]string{
		"--target", "http://localhost:1/ping",
		"--threshold", "nope",
	})
	if err == nil {
		t.Fatal("Expected parse error for malformed threshold")
	}
	if !strings.Contains(err.Error(), "invalid threshold format") {
		t.Errorf("err = %v", err)
	}
}

func TestIntegration_HTMLOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	htmlPath := filepath.Join(t.TempDir(), "report.html")
	err := run([]string{
		"--target", server.URL,
		"--count", "3",
		"--html-output", htmlPath,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	data, err := os.ReadFile(htmlPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "<!DOCTYPE html>") {
		t.Error("Expected HTML report written to file")
	}
}
