// Package sqlite contains the SQLite persistence layer for reconstruction
// output: run bookkeeping rows and the candidates produced by each run.
//
// All database read/write operations live here rather than in the finder
// packages. The engine stays free of SQL and the storage backend can be
// swapped out in tests.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle so migration and maintenance helpers can hang off
// one type. Stores take the embedded *sql.DB.
type DB struct {
	*sql.DB
}

// connPragmas is appended to the DSN so every pooled connection gets the
// same settings. journal_mode persists in the database file; busy_timeout,
// synchronous and foreign_keys are per-connection.
const connPragmas = "?_pragma=journal_mode(WAL)" +
	"&_pragma=busy_timeout(5000)" +
	"&_pragma=synchronous(NORMAL)" +
	"&_pragma=foreign_keys(ON)"

// Open opens (creating if absent) the SQLite database at path. The schema is
// not touched; call MigrateUp to bring it to the current version.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+connPragmas)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	return &DB{db}, nil
}

// OpenAndMigrate opens the database and applies all pending migrations.
func OpenAndMigrate(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

const (
	busyRetries   = 5
	busyBaseDelay = 10 * time.Millisecond
)

// isSQLiteBusy reports whether err looks like SQLITE_BUSY lock contention.
// modernc surfaces these as plain error strings, so match on the text.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with exponential backoff while it reports
// lock contention. Any other error is returned immediately.
func retryOnBusy(fn func() error) error {
	delay := busyBaseDelay
	var err error
	for attempt := 0; attempt < busyRetries; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < busyRetries-1 {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return err
}
