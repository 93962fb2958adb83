package sessionlog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func newLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestOpenEphemeral(t *testing.T) {
	ctx := context.Background()
	cfg := Config{RetentionMode: "ephemeral"}
	s, err := Open(ctx, cfg, newLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.AppendLine(ctx, "sess-1", "hello"); err != nil {
		t.Fatalf("append line: %v", err)
	}
	lines, err := s.Lines(ctx, "sess-1", 10)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines in ephemeral mode, got %d", len(lines))
	}
}

func TestAppendAndRead(t *testing.T) {
	tmp := t.TempDir()
	cfg := Config{Path: filepath.Join(tmp, "session-log.db"), RetentionMode: "durable"}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open session log: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	sessionID := "sess-123"
	if err := s.BeginSession(context.Background(), sessionID, "svc-live-caption"); err != nil {
		t.Fatalf("begin session: %v", err)
	}
	if err := s.AppendLine(context.Background(), sessionID, "こんにちは。"); err != nil {
		t.Fatalf("append line: %v", err)
	}
	if err := s.AppendLine(context.Background(), sessionID, "げんきですか。"); err != nil {
		t.Fatalf("append line: %v", err)
	}

	lines, err := s.Lines(context.Background(), sessionID, 10)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "こんにちは。" || lines[1].Text != "げんきですか。" {
		t.Fatalf("unexpected line order: %q, %q", lines[0].Text, lines[1].Text)
	}
}

func TestBeginSessionIdempotent(t *testing.T) {
	tmp := t.TempDir()
	cfg := Config{Path: filepath.Join(tmp, "session-log.db"), RetentionMode: "durable"}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open session log: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	for i := 0; i < 2; i++ {
		if err := s.BeginSession(context.Background(), "sess-1", "svc"); err != nil {
			t.Fatalf("begin session attempt %d: %v", i+1, err)
		}
	}
}

func TestDeleteSessionCascades(t *testing.T) {
	tmp := t.TempDir()
	cfg := Config{Path: filepath.Join(tmp, "session-log.db"), RetentionMode: "durable"}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open session log: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.BeginSession(context.Background(), "sess-1", "svc"); err != nil {
		t.Fatalf("begin session: %v", err)
	}
	if err := s.AppendLine(context.Background(), "sess-1", "line"); err != nil {
		t.Fatalf("append line: %v", err)
	}
	if err := s.DeleteSession(context.Background(), "sess-1"); err != nil {
		t.Fatalf("delete session: %v", err)
	}

	lines, err := s.Lines(context.Background(), "sess-1", 10)
	if err != nil {
		t.Fatalf("lines: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected cascade delete, got %d lines", len(lines))
	}
}
