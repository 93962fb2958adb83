package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"live-caption-service/internal/config"
	"live-caption-service/internal/models"
	"live-caption-service/internal/sessionlog"

	"github.com/rs/zerolog"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Service.Principal = "svc-test"
	cfg.Caption.MaxCharacters = 300
	cfg.Caption.ClearAfter = time.Minute
	cfg.Recognizer.Provider = "mock"
	cfg.SessionLog.Path = filepath.Join(t.TempDir(), "session-log.db")
	cfg.SessionLog.RetentionMode = "durable"
	cfg.Observability.LogLevel = "error"
	return cfg
}

func TestApplicationOnUpdatedDrivesView(t *testing.T) {
	application := New(testConfig(t))

	application.OnUpdated("こんにちは。げんき")

	if got := application.View.Current(); got != "こんにちは。げんき" {
		t.Errorf("View.Current() = %q, want caption pushed through", got)
	}
}

func TestApplicationPersistsArchivedLines(t *testing.T) {
	cfg := testConfig(t)
	application := New(cfg)

	ctx := context.Background()
	store, err := sessionlog.Open(ctx, sessionlog.Config{
		Path:          cfg.SessionLog.Path,
		RetentionMode: cfg.SessionLog.RetentionMode,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	application.Store = store
	if err := store.BeginSession(ctx, application.SessionID, "svc-test"); err != nil {
		t.Fatalf("begin session: %v", err)
	}

	application.Ledger.Update(models.RecognitionEvent{
		ResultIndex: 0,
		Results:     []models.RecognitionResult{models.FinalResult("こんにちは")},
	})
	// Nothing archived yet, so an update persists nothing.
	application.OnUpdated(application.Ledger.CurrentSpeech())
	lines, err := store.Lines(ctx, application.SessionID, 10)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected 0 persisted lines before checkpoint, got %d", len(lines))
	}

	// Checkpoint folds the window into history; the next update flushes it.
	application.Ledger.Init()
	application.OnUpdated(application.Ledger.CurrentSpeech())

	lines, err = store.Lines(ctx, application.SessionID, 10)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "こんにちは。" {
		t.Fatalf("expected archived line persisted once, got %v", lines)
	}

	// Re-persisting is a no-op; the counter tracks the tail.
	application.OnUpdated(application.Ledger.CurrentSpeech())
	lines, err = store.Lines(ctx, application.SessionID, 10)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected no duplicate persistence, got %d lines", len(lines))
	}
}

func TestApplicationOnCriticalWithoutStore(t *testing.T) {
	application := New(testConfig(t))

	// Must not panic before Start wires the store.
	application.OnCritical("speech recognition unavailable: boom (network)")
	application.OnLog("session ended")
}
