package extract

import (
	"fmt"
	"mime"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// Decode turns raw body bytes into text using the charset parameter of the
// request's Content-Type. Without a charset the bytes are taken as UTF-8 and
// returned unchanged; invalid sequences are left for the loader to store as-is.
func Decode(body []byte, contentType string) (string, error) {
	charset := charsetOf(contentType)
	if charset == "" {
		return string(body), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("unsupported charset %q: %w", charset, err)
	}

	name, _ := htmlindex.Name(enc)
	if name == "utf-8" {
		return string(body), nil
	}

	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return "", fmt.Errorf("decode %s body: %w", name, err)
	}
	return string(out), nil
}

// charsetOf returns the lowercased charset parameter of contentType, or "".
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}
