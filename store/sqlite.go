package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/synthpanel/synthpanel/domain"
)

// SQLiteStore implements Store using SQLite. The full session record is
// stored as a JSON document; id, status, and updated_at are lifted into
// columns for inspection and indexing.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			version INTEGER NOT NULL,
			updated_at DATETIME NOT NULL,
			record TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status, updated_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put creates the record for the session id, or resets it if one
// already exists.
func (s *SQLiteStore) Put(ctx context.Context, session *domain.Session) error {
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now
	session.Version = 1

	record, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (session_id, status, version, updated_at, record) VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.Status, session.Version, session.UpdatedAt, string(record))
	return err
}

// Get retrieves a session record by id. Returns (nil, nil) when no
// record exists.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	var record string
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM sessions WHERE session_id = ?`, id).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(record), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Update persists an existing record, guarded by the record version.
func (s *SQLiteStore) Update(ctx context.Context, session *domain.Session) error {
	prev := session.Version
	session.Version++
	session.UpdatedAt = time.Now()

	record, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, version = ?, updated_at = ?, record = ? WHERE session_id = ? AND version = ?`,
		session.Status, session.Version, session.UpdatedAt, string(record), session.ID, prev)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		existing, err := s.Get(ctx, session.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrVersionConflict
	}
	return nil
}

// Delete removes a session record.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, id)
	return err
}
