package core

// error_messages.go maps import failures to user-facing messages with a
// support code. The code is what an uploader quotes back; the technical error
// only ever goes to the log.
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Invalid integer in the Id or Age column; nothing was imported
//	IMP002 - Empty upload
//	IMP003 - Body charset not supported
//	IMP004 - Another import is running
//	IMP005 - Upload was cut off before the file content
//
// # Storage Errors (DB001-DB099)
//
//	DB001 - Destination database could not be written (generic storage failure)
//	DB002 - Database is locked by another process
//	DB003 - Connection refused
//	DB004 - Connection reset
//	DB005 - Disk full or database read-only
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Upload exceeds the size limit
//	FILE002 - Extracted CSV copy could not be saved
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled
//	REQ002 - Request timed out
//
// # Default (ERR000)
//
// Kinds are matched first via errors.As on *ImportError. Errors without a kind
// (or storage errors whose driver text says more) fall through to the pattern
// table, matched case-insensitively with strings.Contains, first match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

var kindMessages = map[ErrorKind]UserMessage{
	KindFieldType: {
		Message: "A row has a non-numeric Id or Age, so nothing was imported",
		Action:  "Fix the reported line and upload the file again",
		Code:    "IMP001",
	},
	KindEmptyBody: {
		Message: "The upload was empty",
		Action:  "Choose a CSV file before submitting the form",
		Code:    "IMP002",
	},
	KindDecode: {
		Message: "The upload uses a character set that is not supported",
		Action:  "Save the file as UTF-8 and upload it again",
		Code:    "IMP003",
	},
	KindTruncated: {
		Message: "The upload ended before the file content, so nothing was imported",
		Action:  "Upload the file again",
		Code:    "IMP005",
	},
	KindArtifact: {
		Message: "The uploaded CSV could not be saved",
		Action:  "Check that the upload directory is writable",
		Code:    "FILE002",
	},
}

var storageMessage = UserMessage{
	Message: "The data could not be written to the database",
	Action:  "Please try again; the table may be empty until a later import succeeds",
	Code:    "DB001",
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is checked in order; keep specific patterns first.
var errorPatterns = []errorPattern{
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Another import is still running",
			Action:  "Wait for it to finish and try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The database is locked by another process",
			Action:  "Close other programs using the database and try again",
			Code:    "DB002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "readonly database",
		msg: UserMessage{
			Message: "The database cannot be written",
			Action:  "Check file permissions and free disk space",
			Code:    "DB005",
		},
	},
	{
		pattern: "database or disk is full",
		msg: UserMessage{
			Message: "The database cannot be written",
			Action:  "Check file permissions and free disk space",
			Code:    "DB005",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The upload exceeds the size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the server log",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ie *ImportError
	if errors.As(err, &ie) && ie.Kind != KindStorage {
		if msg, ok := kindMessages[ie.Kind]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	if ie != nil && ie.Kind == KindStorage {
		return storageMessage
	}
	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
