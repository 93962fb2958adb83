package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthzAlwaysOK(t *testing.T) {
	s := NewServer(":0", func() bool { return false })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz status = %d, want 200", rec.Code)
	}
}

func TestReadyzReflectsReadiness(t *testing.T) {
	ready := false
	s := NewServer(":0", func() bool { return ready })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz status = %d before ready, want 503", rec.Code)
	}

	ready = true
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d once ready, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "ready" {
		t.Errorf("GET /readyz body = %q, want %q", got, "ready")
	}
}

func TestReadyzNilFuncDefaultsReady(t *testing.T) {
	s := NewServer(":0", nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /readyz status = %d with nil readiness, want 200", rec.Code)
	}
}
