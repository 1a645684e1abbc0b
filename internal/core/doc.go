// Package core implements CSV imports: loading typed rows into a destination
// table and the service that runs one import end to end.
//
// It is independent of any transport. The web server and the CLI both hand it
// raw bytes and report the single result or error it returns.
//
// # Import Flow
//
//  1. [Service.Import] takes the one import slot ([ImportLimiter]); a caller
//     that cannot get it within the configured wait receives [ErrImportBusy].
//  2. The body is decoded with its declared charset and, for raw uploads, the
//     file content is cut out of the multipart framing by position. A body
//     that yields no CSV text, or is cut off before its file content, stops
//     here with the table untouched.
//  3. The extracted text is copied to the artifact path, if one is set.
//  4. [Loader.ResetAndLoad] drops and recreates the table, then inserts every
//     row in one transaction.
//
// # Destination Table
//
// Columns are fixed: Id INTEGER, Name TEXT, Surname TEXT, Initials TEXT,
// Age INTEGER, DateOfBirth TEXT. The first non-blank line of the CSV text is a
// header and is discarded. Lines with fewer than six comma-separated fields are
// skipped; extra fields are ignored. There is no quoting support.
//
// The reset is not part of the insert transaction. An import that fails after
// the reset leaves the table empty, never partially filled and never restored.
//
// # Error Handling
//
// Every failure is an [*ImportError] with a [ErrorKind], or [ErrImportBusy].
// [MapError] turns either into a user message with a support code:
//
//   - IMP001-IMP005: Import errors (bad integer, empty upload, charset, busy,
//     truncated upload)
//   - DB001-DB005: Database errors (write failure, locks, connections, disk)
//   - FILE001-FILE002: File errors (size limit, artifact)
//   - REQ001-REQ002: Request cancelled or timed out
package core
