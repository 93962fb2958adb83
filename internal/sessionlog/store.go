// Package sessionlog persists finalized transcript lines so a capture
// session survives process restarts.
package sessionlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// Config holds session log storage configuration.
type Config struct {
	// Path is the SQLite database file.
	Path string
	// RetentionMode is "durable" or "ephemeral". Ephemeral mode keeps
	// nothing: every write is a no-op and reads return empty.
	RetentionMode string
}

// Line is one persisted transcript line.
type Line struct {
	ID        int64
	SessionID string
	Text      string
	CreatedAt time.Time
}

// Store wraps a SQLite-backed transcript line store.
type Store struct {
	db    *sql.DB
	cfg   Config
	log   zerolog.Logger
	clock func() time.Time
}

// Open initializes the session log store according to config.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	if cfg.RetentionMode == "ephemeral" {
		log.Info().Msg("Session log in ephemeral mode, nothing will be persisted")
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.log.Info().Str("path", cfg.Path).Msg("Session log opened")
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS sessions (
    session_id TEXT PRIMARY KEY,
    principal TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS lines (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY(session_id) REFERENCES sessions(session_id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_lines_session_created ON lines(session_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginSession ensures a session row exists.
func (s *Store) BeginSession(ctx context.Context, sessionID, principal string) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions(session_id, principal, created_at)
		 VALUES(?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET principal=excluded.principal`,
		sessionID, principal, s.clock().UTC())
	return err
}

// AppendLine writes one finalized transcript line.
func (s *Store) AppendLine(ctx context.Context, sessionID, text string) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lines(session_id, text, created_at) VALUES(?, ?, ?)`,
		sessionID, text, s.clock().UTC())
	return err
}

// Lines retrieves up to limit lines for a session in write order.
func (s *Store) Lines(ctx context.Context, sessionID string, limit int) ([]Line, error) {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, text, created_at
		 FROM lines WHERE session_id = ? ORDER BY id ASC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		var created string
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Text, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			l.CreatedAt = ts
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// DeleteSession removes a session and all its lines.
func (s *Store) DeleteSession(ctx context.Context, sessionID string) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID)
	return err
}
