// Package sqldb opens the relational store behind every content store.
// Postgres is reached through the pgx stdlib driver; SQLite through the
// pure-Go modernc driver for single-node deployments and tests.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/folio/internal/app/store/sqlutil"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// Driver names accepted by Open.
const (
	DriverPgx    = "pgx"
	DriverSQLite = "sqlite"
)

// Pool defaults for Postgres.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
	DefaultConnMaxIdleTime = 1 * time.Minute
)

// Options configures Open.
type Options struct {
	Driver       string // "pgx" or "sqlite"
	DSN          string // postgres URL, or a file path for sqlite
	MaxOpenConns int    // postgres only; 0 uses DefaultMaxOpenConns
}

// DialectFor maps a driver name to its SQL dialect.
func DialectFor(driver string) (sqlutil.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPgx, "postgres", "postgresql":
		return sqlutil.Postgres, nil
	case DriverSQLite, "sqlite3":
		return sqlutil.SQLite, nil
	default:
		return "", fmt.Errorf("unsupported db driver %q (want %q or %q)", driver, DriverPgx, DriverSQLite)
	}
}

// SQLiteDSN turns a file path into a modernc DSN with foreign keys on and
// a busy timeout so concurrent writers wait instead of failing.
func SQLiteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open connects, applies pool settings and pings. The returned dialect
// selects DDL and type mappings for the schema package.
func Open(ctx context.Context, opts Options) (*sql.DB, sqlutil.Dialect, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, "", errors.New("db dsn is empty")
	}

	var db *sql.DB
	switch dialect {
	case sqlutil.Postgres:
		db, err = sql.Open(DriverPgx, opts.DSN)
		if err != nil {
			return nil, "", fmt.Errorf("open postgres: %w", err)
		}
		maxOpen := opts.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = DefaultMaxOpenConns
		}
		db.SetMaxOpenConns(maxOpen)
		db.SetMaxIdleConns(DefaultMaxIdleConns)
		db.SetConnMaxLifetime(DefaultConnMaxLifetime)
		db.SetConnMaxIdleTime(DefaultConnMaxIdleTime)

	case sqlutil.SQLite:
		if dir := filepath.Dir(opts.DSN); dir != "." && !strings.HasPrefix(opts.DSN, "file:") {
			if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
				return nil, "", fmt.Errorf("create dirs: %w", err)
			}
		}
		db, err = sql.Open(DriverSQLite, SQLiteDSN(opts.DSN))
		if err != nil {
			return nil, "", fmt.Errorf("open sqlite: %w", err)
		}
		// one writer at a time; pragmas are per-connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping database: %w", err)
	}
	return db, dialect, nil
}
