// Package sqlite implements the repository interfaces on top of SQLite.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no CGo, no C compiler, cross-compiles
// like any other Go package. It registers itself with database/sql as the
// "sqlite" driver.
//
// CONNECTIONS AND TRANSACTIONS:
// DB wraps a *sql.DB pool. Every repository method runs through a querier,
// which is either the pool itself or a *sql.Tx. WithinTx hands the callback a
// DB bound to a fresh transaction, so the service layer passes the
// transaction explicitly instead of sharing global session state.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/holocron/internal/repository"
)

var (
	_ repository.Store      = (*DB)(nil)
	_ repository.Transactor = (*DB)(nil)
)

// querier is the subset of *sql.DB and *sql.Tx the repositories use.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB provides every repository over one SQLite database.
//
// A DB returned by New talks to the pool. A DB handed out by WithinTx talks
// to a single transaction; its tx field is non-nil.
type DB struct {
	conn *sql.DB
	q    querier
	tx   *sql.Tx
}

// New opens (creating if needed) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/holocron.db"  → file-based database; data/ is created if missing
//   - ":memory:"          → in-memory database, used by the tests
//
// PRAGMAs are passed in the DSN rather than executed once, because
// database/sql may open several connections and PRAGMAs are per-connection.
func New(dbPath string) (*DB, error) {
	memory := dbPath == ":memory:"

	if !memory {
		file, _, _ := strings.Cut(dbPath, "?")
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("sqlite: creating directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("sqlite", dsn(dbPath, memory))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Each connection to ":memory:" is a separate, empty database, so the
	// pool must never grow past one connection.
	if memory {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn, q: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func dsn(dbPath string, memory bool) string {
	params := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if !memory {
		// WAL lets readers proceed while a writer holds the lock.
		params = append(params, "_pragma=journal_mode(WAL)")
	}

	// Transactions take the write lock at BEGIN. A deferred transaction that
	// reads and then writes fails with SQLITE_BUSY instead of waiting when
	// another writer commits in between.
	params = append(params, "_txlock=immediate")

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + strings.Join(params, "&")
}

// Close closes the connection pool. It is a no-op on a transaction-bound DB.
func (db *DB) Close() error {
	if db.tx != nil {
		return nil
	}
	return db.conn.Close()
}

// WithinTx runs fn inside a transaction and commits if fn returns nil.
//
// Calling WithinTx on a DB that is already bound to a transaction reuses that
// transaction; the outermost call decides commit or rollback.
func (db *DB) WithinTx(ctx context.Context, fn func(tx repository.Store) error) (err error) {
	if db.tx != nil {
		return fn(db)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			// The rollback error is secondary; the caller needs fn's error.
			_ = tx.Rollback()
		}
	}()

	if err = fn(&DB{conn: db.conn, q: tx, tx: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// migrate creates the schema. Every statement is idempotent.
//
// favorites stores the planet-or-character target as two nullable foreign
// keys with a CHECK that exactly one is set. The partial UNIQUE indexes are
// what make duplicate favorites impossible, even under concurrent requests.
func (db *DB) migrate() error {
	steps := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            INTEGER PRIMARY KEY AUTOINCREMENT,
				username      TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"planets", `
			CREATE TABLE IF NOT EXISTS planets (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				name       TEXT NOT NULL,
				climate    TEXT NOT NULL DEFAULT '',
				terrain    TEXT NOT NULL DEFAULT '',
				population INTEGER NOT NULL DEFAULT 0
			);`},
		{"characters", `
			CREATE TABLE IF NOT EXISTS characters (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				name       TEXT NOT NULL,
				height     INTEGER NOT NULL DEFAULT 0,
				hair_color TEXT NOT NULL DEFAULT '',
				eye_color  TEXT NOT NULL DEFAULT '',
				gender     TEXT NOT NULL DEFAULT ''
			);`},
		{"favorites", `
			CREATE TABLE IF NOT EXISTS favorites (
				id           INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id      INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				planet_id    INTEGER REFERENCES planets(id) ON DELETE CASCADE,
				character_id INTEGER REFERENCES characters(id) ON DELETE CASCADE,
				created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
				CHECK ((planet_id IS NULL) <> (character_id IS NULL))
			);
			CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_user_planet
				ON favorites(user_id, planet_id) WHERE planet_id IS NOT NULL;
			CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_user_character
				ON favorites(user_id, character_id) WHERE character_id IS NOT NULL;`},
	}

	for _, step := range steps {
		if _, err := db.conn.Exec(step.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", step.name, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
func isUniqueViolation(err error) bool {
	var se *moderncsqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
