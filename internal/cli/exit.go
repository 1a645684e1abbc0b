package cli

import (
	"errors"
	"strings"

	"github.com/JonMunkholm/csvimport/internal/core"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitDataRejected  = 3
	ExitDatabaseError = 4
	ExitBusy          = 5
	ExitConfigError   = 10
)

// ExitCodeForError maps an error returned by Execute to a process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, core.ErrImportBusy):
		return ExitBusy
	}

	if kind, ok := core.KindOf(err); ok {
		switch kind {
		case core.KindFieldType, core.KindEmptyBody, core.KindDecode, core.KindTruncated:
			return ExitDataRejected
		case core.KindStorage:
			return ExitDatabaseError
		default:
			return ExitGeneralError
		}
	}

	// cobra reports argument and flag problems as plain errors
	errStr := err.Error()
	if strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown command") ||
		strings.Contains(errStr, "accepts ") {
		return ExitUsageError
	}

	return ExitGeneralError
}
