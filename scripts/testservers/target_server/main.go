// Command target_server runs a local HTTP server with tunable latency and
// failure behavior, used as a benchmark target during development.
//
// Usage:
//
//	go run ./scripts/testservers/target_server -port 8080 -latency 20ms
//	clientrace --target http://localhost:8080/ping --backends default,http1,http2 --h2c
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func main() {
	port := flag.Int("port", 8080, "Listening port")
	latency := flag.Duration("latency", 0, "Added latency per request")
	jitter := flag.Duration("jitter", 0, "Random extra latency up to this value")
	failRate := flag.Float64("fail-rate", 0, "Fraction of requests answered with 500")
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/ping", handlePing(*latency, *jitter, *failRate))
	mux.HandleFunc("/echo", handleEcho)
	mux.HandleFunc("/status/", handleStatus)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true, "path": r.URL.Path, "proto": r.Proto})
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("target server listening on %s (h2c enabled)", addr)
	// h2c lets the http2 backend connect without TLS.
	handler := h2c.NewHandler(mux, &http2.Server{})
	log.Fatal(http.ListenAndServe(addr, handler))
}

func handlePing(latency, jitter time.Duration, failRate float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		delay := latency
		if jitter > 0 {
			delay += time.Duration(rand.Int63n(int64(jitter)))
		}
		if delay > 0 {
			time.Sleep(delay)
		}
		if failRate > 0 && rand.Float64() < failRate {
			respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "injected failure"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "proto": r.Proto})
	}
}

func handleEcho(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}
	fields := make(map[string]any, len(r.Form))
	for key, values := range r.Form {
		fields[key] = values[0]
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"method": r.Method,
		"proto":  r.Proto,
		"form":   fields,
	})
}

func handleStatus(w http.ResponseWriter, r *http.Request) {
	codeStr := strings.TrimPrefix(r.URL.Path, "/status/")
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 100 || code > 599 {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid status code"})
		return
	}
	respondJSON(w, code, map[string]any{"status": code})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
