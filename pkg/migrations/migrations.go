package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

// Target names a database, either a local sqlite file or a remote libsql
// database.
type Target struct {
	File      string
	URL       string
	AuthToken string
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a local sqlite database, creating its parent directories.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// sqlite only supports a single writer, see
	// https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		db.Close()
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

func isRemote(u string) bool {
	for _, scheme := range []string{"libsql://", "http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(u, scheme) {
			return true
		}
	}
	return false
}

// OpenRemoteDB opens a libsql database over the network.
func OpenRemoteDB(target Target) (*sql.DB, error) {
	dsn := target.URL
	if target.AuthToken != "" {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		query := parsed.Query()
		query.Set("authToken", target.AuthToken)
		parsed.RawQuery = query.Encode()
		dsn = parsed.String()
	}
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	return db, nil
}

func wrapOpenAndMigrate(err error) error {
	return fmt.Errorf("open and migrate db: %w", err)
}

// OpenAndMigrateDB opens the target and applies the schema to it, the
// schema must be idempotent (create ... if not exists).
func OpenAndMigrateDB(ctx context.Context, target Target, schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	switch {
	case target.URL != "" && isRemote(target.URL):
		db, err = OpenRemoteDB(target)
	case target.URL != "":
		db, err = OpenDB(target.URL)
	default:
		db, err = OpenDB(target.File)
	}
	if err != nil {
		return nil, wrapOpenAndMigrate(err)
	}

	_, err = db.ExecContext(ctx, schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenAndMigrate(err)
	}
	return db, nil
}
