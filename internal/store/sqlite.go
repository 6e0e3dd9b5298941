package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/manasapp/manas/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS live_turns (
		user_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		message TEXT NOT NULL,
		reply TEXT NOT NULL,
		ts INTEGER NOT NULL,
		PRIMARY KEY (user_id, seq)
	);

	CREATE TABLE IF NOT EXISTS live_moods (
		user_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		mood TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		reply TEXT NOT NULL,
		PRIMARY KEY (user_id, seq)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		mood TEXT NOT NULL,
		summary TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListTurns retrieves the live conversation turns for a user in insertion order.
func (s *SQLiteStore) ListTurns(ctx context.Context, userID string) ([]domain.ConversationTurn, error) {
	query := `SELECT message, reply, ts FROM live_turns WHERE user_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query live turns: %w", err)
	}
	defer rows.Close()

	turns := []domain.ConversationTurn{}
	for rows.Next() {
		var turn domain.ConversationTurn
		var ts int64
		if err := rows.Scan(&turn.Message, &turn.Reply, &ts); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		turn.Timestamp = time.Unix(ts, 0)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}
	return turns, nil
}

// ListMoods retrieves the live mood records for a user in insertion order.
func (s *SQLiteStore) ListMoods(ctx context.Context, userID string) ([]domain.MoodRecord, error) {
	query := `SELECT mood, confidence, reply FROM live_moods WHERE user_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query live moods: %w", err)
	}
	defer rows.Close()

	moods := []domain.MoodRecord{}
	for rows.Next() {
		var rec domain.MoodRecord
		var mood string
		if err := rows.Scan(&mood, &rec.Confidence, &rec.Reply); err != nil {
			return nil, fmt.Errorf("scan mood row: %w", err)
		}
		rec.Mood = domain.Mood(mood)
		moods = append(moods, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mood rows: %w", err)
	}
	return moods, nil
}

// AppendExchange appends one turn and its mood record in a single transaction.
// The per-user sequence number is assigned inside the transaction so both
// sequences always stay index-aligned.
func (s *SQLiteStore) AppendExchange(ctx context.Context, userID string, turn domain.ConversationTurn, mood domain.MoodRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM live_turns WHERE user_id = ?`, userID)
	if err := row.Scan(&seq); err != nil {
		return fmt.Errorf("next sequence number: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO live_turns (user_id, seq, message, reply, ts) VALUES (?, ?, ?, ?, ?)`,
		userID, seq, turn.Message, turn.Reply, turn.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert turn: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO live_moods (user_id, seq, mood, confidence, reply) VALUES (?, ?, ?, ?, ?)`,
		userID, seq, string(mood.Mood), mood.Confidence, mood.Reply,
	)
	if err != nil {
		return fmt.Errorf("insert mood: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append transaction: %w", err)
	}
	return nil
}

// ClearLiveState removes both live sequences for a user.
func (s *SQLiteStore) ClearLiveState(ctx context.Context, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin clear transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM live_turns WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear turns: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM live_moods WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear moods: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit clear transaction: %w", err)
	}
	return nil
}

// AddSession appends a completed session record to the user's archive.
func (s *SQLiteStore) AddSession(ctx context.Context, userID string, rec domain.SessionRecord) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, mood, summary, created_at) VALUES (?, ?, ?, ?)`,
		userID, string(rec.Mood), rec.Summary, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListSessions retrieves all archived session records for a user.
func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]domain.SessionRecord, error) {
	query := `SELECT mood, summary, created_at FROM sessions WHERE user_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.SessionRecord{}
	for rows.Next() {
		var rec domain.SessionRecord
		var mood string
		var createdAt int64
		if err := rows.Scan(&mood, &rec.Summary, &createdAt); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.Mood = domain.Mood(mood)
		if createdAt > 0 {
			rec.CreatedAt = time.Unix(createdAt, 0)
		} else {
			// Defensive defaulting; archive writes always set created_at.
			rec.CreatedAt = time.Now()
		}
		sessions = append(sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}
