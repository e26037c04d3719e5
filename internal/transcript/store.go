package transcript

import (
	"context"
	"database/sql"
	"path/filepath"
	"time"

	"bonsai-cli/internal/model"

	_ "modernc.org/sqlite"
)

// Store keeps a durable log of chat exchanges under the config dir, so a new
// session can reload recent context and `bonsai chat log` can inspect past
// conversations. It is purely local convenience: the wire contract (full
// running history resent per call) does not depend on it.
type Store struct {
	db *sql.DB
}

func dbPath(dir string) string { return filepath.Join(dir, "transcript.sqlite") }

// Open opens (creating if needed) the transcript db in dir.
func Open(ctx context.Context, dir string) (*Store, error) {
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dbPath(dir))
	if err != nil {
		return nil, err
	}
	// WAL + busy_timeout: the TUI and a scripted `bonsai chat` may touch the
	// transcript from separate processes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, id);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append records one message for userID.
func (s *Store) Append(ctx context.Context, userID string, msg model.ChatMessage) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (user_id, role, content, created_at_unixms) VALUES (?, ?, ?, ?)`,
		userID, string(msg.Role), msg.Content, time.Now().UnixMilli(),
	)
	return err
}

// Recent returns up to limit most-recent messages for userID, oldest first,
// ready to seed a bridge.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM (
			SELECT id, role, content FROM messages WHERE user_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ChatMessage
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, err
		}
		out = append(out, model.ChatMessage{Role: model.ChatRole(role), Content: content})
	}
	return out, rows.Err()
}

// Clear drops the stored conversation for userID.
func (s *Store) Clear(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE user_id = ?`, userID)
	return err
}
