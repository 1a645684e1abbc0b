// Package store opens the destination database for imports.
//
// The default destination is a file-backed SQLite database (modernc.org/sqlite,
// no cgo). Postgres is supported through pgx's database/sql driver so the loader
// can run the same statements against either backend.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DefaultURL is the SQLite database file used when nothing is configured.
const DefaultURL = "output/test.db"

// ErrUnknownDriver is returned for driver names other than sqlite or postgres.
var ErrUnknownDriver = errors.New("unknown database driver")

// Config selects and locates the destination database.
type Config struct {
	// Driver is "sqlite" or "postgres". Empty means infer from URL.
	Driver string
	// URL is a file path (or file: URI) for SQLite, a connection string for Postgres.
	URL string
}

// ResolveDriver returns the effective driver for cfg.
func ResolveDriver(cfg Config) (string, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "":
		if isPostgresURL(cfg.URL) {
			return DriverPostgres, nil
		}
		return DriverSQLite, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// Open connects to the configured database, verifies the connection and
// returns it together with the dialect the loader must use.
func Open(ctx context.Context, cfg Config) (*sql.DB, Dialect, error) {
	driver, err := ResolveDriver(cfg)
	if err != nil {
		return nil, nil, err
	}

	var (
		db      *sql.DB
		dialect Dialect
	)

	switch driver {
	case DriverPostgres:
		if cfg.URL == "" {
			return nil, nil, errors.New("postgres requires a connection URL")
		}
		db, err = sql.Open("pgx", cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		dialect = postgresDialect{}

	default:
		path := cfg.URL
		if path == "" {
			path = DefaultURL
		}
		if err := ensureParentDir(path); err != nil {
			return nil, nil, err
		}
		db, err = sql.Open("sqlite", path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		// One writer at a time; also keeps :memory: databases on a single connection.
		db.SetMaxOpenConns(1)
		dialect = sqliteDialect{}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, dialect, nil
}

// ensureParentDir creates the directory holding a SQLite database file.
func ensureParentDir(path string) error {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database directory %s: %w", dir, err)
	}
	return nil
}

func isPostgresURL(url string) bool {
	u := strings.ToLower(url)
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}
