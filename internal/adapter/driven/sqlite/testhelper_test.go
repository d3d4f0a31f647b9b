package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"
	"testing"
)

// setupTestDB creates a named in-memory SQLite database for testing. A unique
// name derived from t.Name() ensures isolation between parallel tests.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so it's a safe SQLite URI filename
	// component and cannot be misinterpreted as query parameters in the DSN.
	safeName := url.PathEscape(t.Name())
	// WAL mode is not applicable to in-memory databases; omit the pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		safeName,
	)

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	handle.SetMaxOpenConns(1)
	if err := handle.Ping(); err != nil {
		_ = handle.Close()
		t.Fatalf("ping test db: %v", err)
	}

	db := &DB{handle: handle, path: dsn}

	if err := Initialize(db); err != nil {
		_ = db.Close()
		t.Fatalf("initialize schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}
