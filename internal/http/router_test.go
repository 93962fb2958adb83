package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"live-caption-service/internal/app"
	"live-caption-service/internal/config"
	"live-caption-service/internal/models"
)

func newTestApp() *app.Application {
	cfg := &config.Config{}
	cfg.Service.Principal = "svc-test"
	cfg.Caption.MaxCharacters = 300
	cfg.Caption.ClearAfter = time.Minute
	cfg.Recognizer.Provider = "mock"
	cfg.Observability.LogLevel = "error"
	return app.New(cfg)
}

func TestHealthEndpoints(t *testing.T) {
	router := NewRouter(newTestApp())

	for _, path := range []string{"/v1/liveness", "/v1/readiness"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestCaptionEndpoint(t *testing.T) {
	application := newTestApp()
	router := NewRouter(application)

	req := httptest.NewRequest(http.MethodGet, "/v1/caption", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp CaptionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.State != "UNINITIALIZED" {
		t.Errorf("state = %q, want UNINITIALIZED", resp.State)
	}
	if resp.Caption != "" {
		t.Errorf("caption = %q, want empty", resp.Caption)
	}

	application.View.Set("こんにちは。")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/caption", nil))
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Caption != "こんにちは。" {
		t.Errorf("caption = %q, want %q", resp.Caption, "こんにちは。")
	}
}

func TestTranscriptEndpoint(t *testing.T) {
	application := newTestApp()
	router := NewRouter(application)

	application.Ledger.Update(models.RecognitionEvent{
		ResultIndex: 0,
		Results:     []models.RecognitionResult{models.FinalResult("こんにちは")},
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/transcript", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "transcript-") {
		t.Errorf("Content-Disposition = %q, want transcript attachment", cd)
	}
	if got := rec.Body.String(); got != "こんにちは。\n" {
		t.Errorf("body = %q, want %q", got, "こんにちは。\n")
	}
}
