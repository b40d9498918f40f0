// Package text implements the normalization applied to all document and
// query text before it is embedded or stored.
package text

import "strings"

// Normalize removes NUL characters, collapses every whitespace run
// (spaces, tabs, newlines) to a single space, and trims the result.
// Empty or all-whitespace input yields "".
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	cleaned := strings.ReplaceAll(raw, "\x00", "")

	// strings.Fields splits on any run of Unicode whitespace, which
	// collapses newlines and tabs in one pass.
	fields := strings.Fields(cleaned)
	return strings.Join(fields, " ")
}

// Truncate hard-cuts s to at most max bytes. No word-boundary awareness:
// embedding providers impose input-length limits and losing tail content
// is the accepted tradeoff over chunking.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	return s[:max]
}
