package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/opsdesk/sessionkit/observe"
)

type recordingMetrics struct {
	observe.Metrics
	requests int
	errored  int
}

func (m *recordingMetrics) RecordRequest(_ context.Context, _ observe.OpMeta, _ time.Duration, err error) {
	m.requests++
	if err != nil {
		m.errored++
	}
}

func TestTelemetry_RecordsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("debug", &buf)
	metrics := &recordingMetrics{Metrics: observe.NopMetrics()}

	var seen *http.Request
	rt := Chain(captureTransport(&seen, http.StatusOK), Telemetry(observe.NopTracer(), metrics, logger))

	req, _ := http.NewRequest(http.MethodGet, "http://api.test/orders", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}

	if metrics.requests != 1 || metrics.errored != 0 {
		t.Errorf("requests = %d errored = %d, want 1/0", metrics.requests, metrics.errored)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "request completed" || entry["url"] != "/orders" {
		t.Errorf("entry = %v", entry)
	}
	if entry["status"] != float64(http.StatusOK) {
		t.Errorf("status = %v, want 200", entry["status"])
	}
}

func TestTelemetry_NilCollaboratorsAreNoops(t *testing.T) {
	var seen *http.Request
	rt := Chain(captureTransport(&seen, http.StatusOK), Telemetry(nil, nil, nil))

	req, _ := http.NewRequest(http.MethodGet, "http://api.test/orders", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
}
