// Package extract pulls the uploaded file content out of a raw multipart
// request body.
//
// The extractor does not parse multipart at all. It assumes the body carries a
// single file field and locates the payload positionally:
//
//   - content starts after the first blank line ("\r\n\r\n"), which for a
//     single-part body is the end of the part headers
//   - content ends at the last run of six dashes, which is where browsers
//     start the closing boundary ("------WebKitFormBoundary...--")
//
// Known failure modes:
//
//   - a boundary token with fewer than four leading dashes of its own (Go's
//     mime/multipart writer, curl) has no six-dash run, so the closing
//     boundary line ends up in the extracted text
//   - a payload that itself contains "------" is cut at its last occurrence
//   - a body with several parts yields the headers and content of every part
//     after the first blank line
//
// None of these are reported as errors; the loader sees whatever text comes
// out. The one framing the extractor rejects is a body whose last six-dash run
// comes before the end of the part headers, which is what a body cut off after
// its opening boundary looks like. That case returns ErrTruncated.
package extract

import (
	"errors"
	"strings"
)

// ErrTruncated means the boundary marker precedes the end of the part
// headers, so there is no file content to cut out.
var ErrTruncated = errors.New("multipart body ends before the file content")

const (
	// HeaderMarker separates part headers from part content.
	HeaderMarker = "\r\n\r\n"

	// BoundaryMarker approximates the start of a closing multipart boundary.
	BoundaryMarker = "------"
)

// Extract returns the file content embedded in body using the default markers.
func Extract(body []byte) (string, error) {
	return FilePart(string(body), HeaderMarker, BoundaryMarker)
}

// FilePart returns the text between the end of the first headerMarker and the
// start of the last boundaryMarker, trimmed of surrounding whitespace.
//
// A missing headerMarker means the content starts at offset 0; a missing
// boundaryMarker means it runs to the end of body. A boundary marker that
// starts exactly where the content would start yields "". One that starts
// before it returns ErrTruncated.
func FilePart(body, headerMarker, boundaryMarker string) (string, error) {
	start := 0
	if headerMarker != "" {
		if i := strings.Index(body, headerMarker); i >= 0 {
			start = i + len(headerMarker)
		}
	}

	end := len(body)
	if boundaryMarker != "" {
		if i := strings.LastIndex(body, boundaryMarker); i >= 0 {
			end = i
		}
	}

	if end < start {
		return "", ErrTruncated
	}
	return strings.TrimSpace(body[start:end]), nil
}
