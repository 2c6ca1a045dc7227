// Package store persists resumes, projects, contact messages and visitor
// metrics in sqlite.
package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	_ "modernc.org/sqlite" // sqlite driver
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalid is returned when a write carries a malformed field.
var ErrInvalid = errors.New("invalid field")

// Store wraps the sqlite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (s *Store, err error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
	if path == ":memory:" {
		dsn = "file::memory:?_time_format=sqlite"
	}

	var db *sql.DB
	db, err = sql.Open("sqlite", dsn)
	if err != nil {
		err = errors.Wrapf(err, "failed to open database: %s", path)
		return s, err
	}
	// sqlite serialises writers; one connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	s = &Store{db: db}
	err = s.migrate(ctx)
	if err != nil {
		db.Close()
		s = nil
		return s, err
	}
	return s, err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS resumes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			date_of_birth TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			photo TEXT NOT NULL DEFAULT '',
			about TEXT NOT NULL DEFAULT '',
			languages TEXT NOT NULL DEFAULT '[]',
			skills TEXT NOT NULL DEFAULT '[]',
			skills_table TEXT NOT NULL DEFAULT '[]',
			experience TEXT NOT NULL DEFAULT '[]',
			resume_projects TEXT NOT NULL DEFAULT '[]',
			testimonials TEXT NOT NULL DEFAULT '[]',
			video_urls TEXT NOT NULL DEFAULT '[]',
			pdf_files TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS projects (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			technologies TEXT NOT NULL DEFAULT '[]',
			github_url TEXT NOT NULL DEFAULT '',
			live_url TEXT NOT NULL DEFAULT '',
			video_url TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sender_name TEXT NOT NULL,
			sender_email TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			is_read INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			name := strings.Fields(stmt)
			return errors.Wrapf(err, "failed to apply schema (%s)", strings.Join(name[:min(len(name), 6)], " "))
		}
	}
	return nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
