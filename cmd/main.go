package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"live-caption-service/internal/app"
	"live-caption-service/internal/config"
	apphttp "live-caption-service/internal/http"
	"live-caption-service/internal/observability"
	"live-caption-service/internal/service/caption"
)

func main() {
	cfg := config.Load()

	application := app.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Application start failed")
	}

	// Metrics and health probes on a separate listener. Ready once the
	// adapter has resolved its capability either way; a platform without
	// recognition still serves the empty transcript.
	obs := observability.NewServer(cfg.Service.MetricsAddr, func() bool {
		return application.Adapter.State() != caption.StateUninitialized
	})
	obs.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Service.HTTPPort,
		Handler:      apphttp.NewRouter(application),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("Live caption service started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP serve failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("HTTP shutdown failed")
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Observability shutdown failed")
	}
	application.Shutdown()
}
