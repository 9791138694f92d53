// Package storetest opens throwaway review databases for tests.
package storetest

import (
	"database/sql"
	"testing"

	"reviewscope-backend/internal/store/db"

	_ "modernc.org/sqlite"
)

// OpenDB opens a sqlite database with the review schema applied. An empty
// path opens an in-memory database. The database is closed when the test
// ends.
func OpenDB(t testing.TB, path string) *sql.DB {
	t.Helper()

	if path == "" {
		path = ":memory:"
	}
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	// every connection to :memory: is its own database
	sqlite.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlite.Close() })

	_, err = sqlite.Exec(db.Schema)
	if err != nil {
		t.Fatal(err)
	}
	_, err = sqlite.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatal(err)
	}
	return sqlite
}
