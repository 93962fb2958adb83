// Package http exposes the caption and transcript surfaces.
package http

import (
	"encoding/json"
	"net/http"
	"time"

	"live-caption-service/internal/app"
	"live-caption-service/internal/export"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CaptionResponse is the live caption surface payload.
type CaptionResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
	Caption   string `json:"caption"`
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Get("/caption", func(w http.ResponseWriter, _ *http.Request) {
			resp := CaptionResponse{
				SessionID: application.SessionID,
				State:     application.Adapter.State().String(),
				Caption:   application.View.Current(),
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(resp)
		})

		r.Get("/transcript", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition",
				"attachment; filename=\""+export.Filename(time.Now().UTC())+"\"")
			w.WriteHeader(http.StatusOK)

			lines, err := export.WriteTranscript(w, application.Ledger.WholeLog())
			if err != nil {
				// Headers are gone already; nothing to do but log.
				application.Logger.Warn().Err(err).Msg("Transcript export write failed")
				return
			}
			application.Metrics.RecordExportServed(lines)
		})
	})

	return r
}
