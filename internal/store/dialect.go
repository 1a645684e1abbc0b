package store

import (
	"fmt"
	"regexp"
	"strconv"
)

// Dialect hides the SQL differences between the supported backends.
type Dialect interface {
	// Name is the driver name ("sqlite" or "postgres").
	Name() string
	// Placeholder returns the bind parameter for the n-th (1-based) argument.
	Placeholder(n int) string
	// InsertionOrder is an ORDER BY expression returning rows of a freshly
	// created, append-only table in the order they were inserted.
	InsertionOrder() string
	// TableExistsQuery returns a query taking the table name as its only
	// argument and yielding one boolean row.
	TableExistsQuery() string
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return DriverSQLite }
func (sqliteDialect) Placeholder(int) string { return "?" }
func (sqliteDialect) InsertionOrder() string { return "rowid" }
func (sqliteDialect) TableExistsQuery() string {
	return "SELECT EXISTS (SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ? COLLATE NOCASE)"
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return DriverPostgres }
func (postgresDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (postgresDialect) InsertionOrder() string { return "ctid" }

// to_regclass folds case the same way unquoted DDL does.
func (postgresDialect) TableExistsQuery() string {
	return "SELECT to_regclass($1) IS NOT NULL"
}

// DialectFor returns the dialect for a driver name accepted by ResolveDriver.
func DialectFor(driver string) (Dialect, error) {
	resolved, err := ResolveDriver(Config{Driver: driver})
	if err != nil {
		return nil, err
	}
	if resolved == DriverPostgres {
		return postgresDialect{}, nil
	}
	return sqliteDialect{}, nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidateIdentifier reports whether name can be used unquoted as a table name
// on every supported backend.
func ValidateIdentifier(name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("invalid table name %q: use letters, digits and underscores, starting with a letter or underscore", name)
	}
	return nil
}
