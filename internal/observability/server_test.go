package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzAlwaysOK(t *testing.T) {
	s := NewServer(":0", Check{Name: "broken", Run: func() error { return errors.New("down") }})

	rec := get(t, s, "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestReadyzPassesWhenChecksPass(t *testing.T) {
	s := NewServer(":0",
		Check{Name: "a", Run: func() error { return nil }},
		Check{Name: "b", Run: func() error { return nil }},
	)

	rec := get(t, s, "/readyz")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "ready" {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
}

func TestReadyzReportsFailingCheck(t *testing.T) {
	s := NewServer(":0",
		Check{Name: "a", Run: func() error { return nil }},
		Check{Name: "catalog", Run: func() error { return errors.New("empty") }},
	)

	rec := get(t, s, "/readyz")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "catalog") {
		t.Errorf("Body should name the failing check, got %q", rec.Body.String())
	}
}

func TestMetricsEndpointServes(t *testing.T) {
	s := NewServer(":0")

	rec := get(t, s, "/metrics")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}
