package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/yourusername/context-ai-bot/internal/domain/entity"
	"github.com/yourusername/context-ai-bot/internal/domain/repository"
)

type sqliteContextStore struct {
	db         *sql.DB
	maxHistory int
	now        func() time.Time
}

// NewSQLiteContextStore SQLite-backed ContextStore. maxHistory bounds the
// per-user message log, zero keeps everything.
func NewSQLiteContextStore(dbPath string, maxHistory int) (repository.ContextStore, error) {
	if dbPath == "" {
		return nil, errors.New("db path must not be empty")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteContextStore{db: db, maxHistory: maxHistory, now: time.Now}, nil
}

func createSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS user_context (
	user_id INTEGER PRIMARY KEY,
	transcript TEXT,
	title TEXT,
	language TEXT,
	continue_context BOOLEAN NOT NULL DEFAULT 0,
	updated_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS user_messages (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL,
	text TEXT NOT NULL,
	origin TEXT NOT NULL,
	ts TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_user_messages_user_ts ON user_messages (user_id, ts);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get returns the user's context, nil when none is stored
func (s *sqliteContextStore) Get(ctx context.Context, userID int64) (*entity.UserContext, error) {
	return getContext(ctx, s.db, userID)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getContext(ctx context.Context, q queryer, userID int64) (*entity.UserContext, error) {
	var (
		uc                          entity.UserContext
		transcript, title, language sql.NullString
	)
	err := q.QueryRowContext(ctx,
		`SELECT user_id, transcript, title, language, continue_context, updated_at FROM user_context WHERE user_id = ?`,
		userID,
	).Scan(&uc.UserID, &transcript, &title, &language, &uc.ContinueContext, &uc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get context for user %d: %w", userID, err)
	}
	uc.Transcript = transcript.String
	uc.Title = title.String
	uc.Language = language.String
	return &uc, nil
}

// Save reads the current row, merges the update and upserts it in one transaction
func (s *sqliteContextStore) Save(ctx context.Context, userID int64, update entity.ContextUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	current, err := getContext(ctx, tx, userID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if current == nil {
		current = &entity.UserContext{UserID: userID}
	}
	update.Apply(current)

	_, err = tx.ExecContext(ctx, `
INSERT INTO user_context (user_id, transcript, title, language, continue_context, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id) DO UPDATE SET
	transcript = excluded.transcript,
	title = excluded.title,
	language = excluded.language,
	continue_context = excluded.continue_context,
	updated_at = excluded.updated_at`,
		userID, current.Transcript, current.Title, current.Language, current.ContinueContext, s.now().UTC())
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("save context for user %d: %w", userID, err)
	}

	return tx.Commit()
}

// AppendMessage logs a message. With maxHistory > 0 the user's oldest
// entries beyond it are dropped.
func (s *sqliteContextStore) AppendMessage(ctx context.Context, userID int64, text string, origin entity.Origin) error {
	if !origin.Valid() {
		return fmt.Errorf("unknown message origin %q", origin)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO user_messages (id, user_id, text, origin, ts) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), userID, text, string(origin), s.now().UTC())
	if err != nil {
		tx.Rollback()
		return err
	}

	if s.maxHistory > 0 {
		_, err = tx.ExecContext(ctx, `
DELETE FROM user_messages
WHERE id IN (
  SELECT id FROM user_messages
  WHERE user_id = ?
  ORDER BY rowid DESC
  LIMIT -1 OFFSET ?
)`, userID, s.maxHistory)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// RecentMessages newest limit entries, returned oldest first
func (s *sqliteContextStore) RecentMessages(ctx context.Context, userID int64, limit int, originFilter entity.Origin) ([]entity.MessageLogEntry, error) {
	query := `SELECT id, user_id, text, origin, ts FROM user_messages WHERE user_id = ?`
	args := []any{userID}
	if originFilter != "" {
		query += ` AND origin = ?`
		args = append(args, string(originFilter))
	}
	// rowid is append order; ts follows the wall clock and can step backwards
	query += ` ORDER BY rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tmp []entity.MessageLogEntry
	for rows.Next() {
		var (
			msg    entity.MessageLogEntry
			origin string
		)
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Text, &origin, &msg.Timestamp); err != nil {
			return nil, err
		}
		msg.Origin = entity.Origin(origin)
		tmp = append(tmp, msg)
	}

	// DESC -> chronological
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}

	return tmp, rows.Err()
}

func (s *sqliteContextStore) Close() error {
	return s.db.Close()
}
