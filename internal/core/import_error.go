package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an import stopped.
type ErrorKind int

const (
	// KindStorage covers opening, resetting, inserting into or committing the
	// destination table.
	KindStorage ErrorKind = iota
	// KindFieldType means an Id or Age field was not a 32-bit integer.
	KindFieldType
	// KindEmptyBody means there was nothing to import.
	KindEmptyBody
	// KindDecode means the body could not be decoded with its declared charset.
	KindDecode
	// KindArtifact means the extracted CSV copy could not be written.
	KindArtifact
	// KindTruncated means a raw multipart body ended before its file content.
	KindTruncated
)

func (k ErrorKind) String() string {
	switch k {
	case KindStorage:
		return "storage"
	case KindFieldType:
		return "field type"
	case KindEmptyBody:
		return "empty body"
	case KindDecode:
		return "decode"
	case KindArtifact:
		return "artifact"
	case KindTruncated:
		return "truncated"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ImportError is the single error an aborted import reports.
type ImportError struct {
	Kind   ErrorKind
	Line   int    // 1-based line in the extracted CSV text, 0 if not row related
	Column string // destination column for KindFieldType
	Op     string // what was being done, e.g. "reset table"
	Err    error
}

func (e *ImportError) Error() string {
	switch {
	case e.Kind == KindFieldType:
		return fmt.Sprintf("import aborted: line %d: invalid integer for %s: %v", e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("import aborted: %s (line %d): %v", e.Op, e.Line, e.Err)
	case e.Op != "":
		return fmt.Sprintf("import aborted: %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("import aborted: %v", e.Err)
	}
}

func (e *ImportError) Unwrap() error { return e.Err }

// KindOf returns the kind of the first ImportError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind, true
	}
	return 0, false
}

func storageErr(op string, err error) *ImportError {
	return &ImportError{Kind: KindStorage, Op: op, Err: err}
}
