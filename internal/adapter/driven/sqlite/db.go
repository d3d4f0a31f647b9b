// Package sqlite persists repository tracking state.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a single SQLite connection with WAL mode enabled. The tracker is a
// single-process, single-writer batch tool, so one connection capped at one
// open conn is enough and sidesteps "database is locked" errors.
type DB struct {
	handle *sql.DB
	path   string
}

// Open opens (creating if necessary) the tracker database at path with WAL
// mode, a busy timeout, and synchronous NORMAL.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open tracker db: %w", err)
	}
	handle.SetMaxOpenConns(1)

	if err := handle.Ping(); err != nil {
		handle.Close()
		return nil, fmt.Errorf("ping tracker db: %w", err)
	}

	return &DB{handle: handle, path: path}, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	if err := db.handle.Close(); err != nil {
		return fmt.Errorf("close tracker db: %w", err)
	}
	return nil
}
