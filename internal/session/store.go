// Package session persists the authenticated session in a local SQLite
// database: bearer token, email and access level, stored and cleared as
// one unit.
package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Session is the stored login state.
type Session struct {
	Token     string
	Email     string
	Level     AccessLevel
	CreatedAt time.Time
}

// Store provides read/write access to the session database.
type Store struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS session (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		token TEXT NOT NULL,
		email TEXT NOT NULL,
		accessLevel TEXT NOT NULL,
		createdAt REAL NOT NULL
	);
`

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored session.
func (s *Store) Save(sess Session) error {
	_, err := s.db.Exec(`
		INSERT INTO session (id, token, email, accessLevel, createdAt)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			email = excluded.email,
			accessLevel = excluded.accessLevel,
			createdAt = excluded.createdAt
	`, sess.Token, sess.Email, sess.Level.String(), float64(time.Now().UnixNano())/1e9)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored session, or nil when none exists. A row with an
// empty token or email counts as logged out.
func (s *Store) Load() (*Session, error) {
	row := s.db.QueryRow(`SELECT token, email, accessLevel, createdAt FROM session WHERE id = 1`)

	var sess Session
	var level string
	var createdAt float64
	if err := row.Scan(&sess.Token, &sess.Email, &level, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	if sess.Token == "" || sess.Email == "" {
		return nil, nil
	}

	sess.Level = ParseAccessLevel(level)
	sess.CreatedAt = timeFromUnix(createdAt)
	return &sess, nil
}

// Clear removes the stored session. Token, email and access level go
// together; there is no partial teardown.
func (s *Store) Clear() error {
	if _, err := s.db.Exec(`DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
