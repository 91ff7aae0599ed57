package transport

import (
	"net/http"
	"testing"
)

func TestRequestID_StampsWhenAbsent(t *testing.T) {
	var seen *http.Request
	rt := Chain(captureTransport(&seen, http.StatusOK), RequestID())

	req, _ := http.NewRequest(http.MethodGet, "http://api.test/orders", nil)
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}

	if seen.Header.Get(RequestIDHeader) == "" {
		t.Errorf("%s header missing", RequestIDHeader)
	}
	if req.Header.Get(RequestIDHeader) != "" {
		t.Error("original request mutated")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	var seen *http.Request
	rt := Chain(captureTransport(&seen, http.StatusOK), RequestID())

	req, _ := http.NewRequest(http.MethodGet, "http://api.test/orders", nil)
	req.Header.Set(RequestIDHeader, "caller-chosen")
	if _, err := rt.RoundTrip(req); err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}

	if got := seen.Header.Get(RequestIDHeader); got != "caller-chosen" {
		t.Errorf("%s = %q, want caller-chosen id kept", RequestIDHeader, got)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	var seen *http.Request
	rt := Chain(captureTransport(&seen, http.StatusOK), RequestID())

	ids := make(map[string]bool)
	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, "http://api.test/orders", nil)
		rt.RoundTrip(req)
		ids[seen.Header.Get(RequestIDHeader)] = true
	}

	if len(ids) != 3 {
		t.Errorf("got %d distinct ids across 3 requests, want 3", len(ids))
	}
}
