package core

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvimport/internal/store"
)

// DefaultTable is the destination table used when none is configured.
const DefaultTable = "csv_import"

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Table is the destination table, dropped and recreated on every import.
	Table string
	// OnPhase, if set, is called on every state transition of an import.
	OnPhase func(ImportPhase)
}

// Loader replaces the contents of one destination table with rows parsed from
// CSV text.
//
// A Loader does no locking. Two ResetAndLoad calls racing on the same table
// can drop each other's table mid-insert; callers must serialize them (the
// Service does, through ImportLimiter).
type Loader struct {
	db      *sql.DB
	dialect store.Dialect
	table   string
	onPhase func(ImportPhase)

	dropSQL   string
	createSQL string
	insertSQL string
	selectSQL string
}

// NewLoader validates cfg and prepares the SQL for the destination table.
func NewLoader(db *sql.DB, dialect store.Dialect, cfg LoaderConfig) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("loader: nil database")
	}
	if dialect == nil {
		return nil, fmt.Errorf("loader: nil dialect")
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}
	if err := store.ValidateIdentifier(table); err != nil {
		return nil, fmt.Errorf("loader: %w", err)
	}

	placeholders := make([]string, len(Columns))
	for i := range Columns {
		placeholders[i] = dialect.Placeholder(i + 1)
	}

	return &Loader{
		db:      db,
		dialect: dialect,
		table:   table,
		onPhase: cfg.OnPhase,

		dropSQL: "DROP TABLE IF EXISTS " + table,
		createSQL: "CREATE TABLE " + table + " (" +
			"Id INTEGER, " +
			"Name TEXT, " +
			"Surname TEXT, " +
			"Initials TEXT, " +
			"Age INTEGER, " +
			"DateOfBirth TEXT)",
		insertSQL: fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			table, strings.Join(Columns, ", "), strings.Join(placeholders, ", ")),
		selectSQL: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
			strings.Join(Columns, ", "), table, dialect.InsertionOrder()),
	}, nil
}

// Table returns the destination table name.
func (l *Loader) Table() string { return l.table }

// ResetAndLoad drops and recreates the destination table, then inserts every
// valid record of csvText in one transaction.
//
// The reset runs outside the transaction and is not undone when the insert
// phase fails: an aborted import leaves the table empty, not restored. Lines
// with fewer than six fields are skipped; a non-integer Id or Age aborts the
// whole import and nothing is committed.
func (l *Loader) ResetAndLoad(ctx context.Context, csvText string) (LoadResult, error) {
	l.phase(PhaseIdle)

	if err := l.reset(ctx); err != nil {
		l.phase(PhaseAborted)
		return LoadResult{}, err
	}
	l.phase(PhaseTableReset)

	res, err := l.load(ctx, csvText)
	if err != nil {
		l.phase(PhaseAborted)
		return LoadResult{}, err
	}
	l.phase(PhaseCommitted)
	return res, nil
}

func (l *Loader) reset(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, l.dropSQL); err != nil {
		return storageErr("drop table "+l.table, err)
	}
	if _, err := l.db.ExecContext(ctx, l.createSQL); err != nil {
		return storageErr("create table "+l.table, err)
	}
	return nil
}

func (l *Loader) load(ctx context.Context, csvText string) (LoadResult, error) {
	var res LoadResult

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return res, storageErr("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	l.phase(PhaseTransactionOpen)

	stmt, err := tx.PrepareContext(ctx, l.insertSQL)
	if err != nil {
		return res, storageErr("prepare insert", err)
	}
	defer stmt.Close()

	headerSeen := false
	for i, line := range strings.Split(csvText, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		row, ok, err := parseRecord(line)
		if err != nil {
			err.Line = i + 1
			return res, err
		}
		if !ok {
			res.Skipped++
			continue
		}

		if res.Inserted == 0 {
			l.phase(PhaseInserting)
		}
		if _, err := stmt.ExecContext(ctx,
			row.ID, row.Name, row.Surname, row.Initials, row.Age, row.DateOfBirth,
		); err != nil {
			return res, &ImportError{Kind: KindStorage, Line: i + 1, Op: "insert row", Err: err}
		}
		res.Inserted++
	}

	if err := tx.Commit(); err != nil {
		return res, storageErr("commit", err)
	}
	committed = true
	return res, nil
}

// Rows returns the destination table's rows in insertion order. Before the
// first import the table does not exist and Rows returns no rows.
func (l *Loader) Rows(ctx context.Context) ([]ImportedRow, error) {
	var exists bool
	if err := l.db.QueryRowContext(ctx, l.dialect.TableExistsQuery(), l.table).Scan(&exists); err != nil {
		return nil, fmt.Errorf("look up %s: %w", l.table, err)
	}
	if !exists {
		return nil, nil
	}

	rows, err := l.db.QueryContext(ctx, l.selectSQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.table, err)
	}
	defer rows.Close()

	var out []ImportedRow
	for rows.Next() {
		var r ImportedRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Surname, &r.Initials, &r.Age, &r.DateOfBirth); err != nil {
			return nil, fmt.Errorf("scan %s: %w", l.table, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", l.table, err)
	}
	return out, nil
}

func (l *Loader) phase(p ImportPhase) {
	if l.onPhase != nil {
		l.onPhase(p)
	}
}

// parseRecord splits one non-blank data line. ok is false when the line has
// fewer than FieldCount fields. Fields beyond the sixth are ignored. The
// returned error, if any, is a KindFieldType ImportError without a line number.
func parseRecord(line string) (row ImportedRow, ok bool, err *ImportError) {
	cols := strings.Split(line, ",")
	if len(cols) < FieldCount {
		return ImportedRow{}, false, nil
	}

	id, perr := parseInt32(cols[colID])
	if perr != nil {
		return ImportedRow{}, false, &ImportError{Kind: KindFieldType, Column: Columns[colID], Err: perr}
	}
	age, perr := parseInt32(cols[colAge])
	if perr != nil {
		return ImportedRow{}, false, &ImportError{Kind: KindFieldType, Column: Columns[colAge], Err: perr}
	}

	return ImportedRow{
		ID:          id,
		Name:        cols[colName],
		Surname:     cols[colSurname],
		Initials:    cols[colInitials],
		Age:         age,
		DateOfBirth: strings.TrimSpace(cols[colDateOfBirth]),
	}, true, nil
}

// parseInt32 accepts an optionally signed decimal with surrounding whitespace.
func parseInt32(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
