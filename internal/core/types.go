package core

import "time"

// Destination table column names, in CSV field order.
var Columns = []string{"Id", "Name", "Surname", "Initials", "Age", "DateOfBirth"}

// FieldCount is the minimum number of comma-separated fields a data line needs.
const FieldCount = 6

// Field positions within a CSV record.
const (
	colID = iota
	colName
	colSurname
	colInitials
	colAge
	colDateOfBirth
)

// ImportedRow is one typed destination-table row.
type ImportedRow struct {
	ID          int32  `json:"id"`
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Initials    string `json:"initials"`
	Age         int32  `json:"age"`
	DateOfBirth string `json:"dateOfBirth"`
}

// ImportPhase is the state of one import invocation.
type ImportPhase string

const (
	PhaseIdle            ImportPhase = "idle"
	PhaseTableReset      ImportPhase = "table_reset"
	PhaseTransactionOpen ImportPhase = "transaction_open"
	PhaseInserting       ImportPhase = "inserting"
	PhaseCommitted       ImportPhase = "committed"
	PhaseAborted         ImportPhase = "aborted"
)

// LoadResult is what the loader reports for a committed import.
type LoadResult struct {
	Inserted int
	// Skipped counts non-blank data lines with fewer than FieldCount fields.
	// It is logged, never shown to the uploader.
	Skipped int
}

// ImportRequest is one upload handed to the Service.
type ImportRequest struct {
	Body        []byte
	ContentType string // used for the charset parameter only
	Source      string // free-form origin for logs, e.g. client IP or file path
	// Raw marks Body as a multipart request body that still needs extraction.
	// When false Body is taken as CSV text directly.
	Raw bool
}

// ImportResult describes a successful import.
type ImportResult struct {
	ImportID string        `json:"importId"`
	Table    string        `json:"table"`
	Inserted int           `json:"rows"`
	Duration time.Duration `json:"-"`
}
