// Package sanitize encodes user-supplied text for embedding in HTML and recovers it afterwards.
// All functions are pure and safe for concurrent use.
package sanitize

import (
	"html"
	"regexp"
	"strings"
)

var (
	htmlEncoder = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"/", "&#x2f;",
	)

	spacesRegex = regexp.MustCompile(`\s+`)
)

// ForHTML escapes the characters that are significant in HTML markup and attribute values.
// Every `&` is escaped, so ForHTML is not idempotent but Recover(ForHTML(s)) == s always holds.
func ForHTML(s string) string {
	return htmlEncoder.Replace(s)
}

// Recover is the inverse of ForHTML. It never fails: unknown or malformed entities are kept as-is.
func Recover(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(s)
}

// Name trims `s` and collapses inner whitespace runs into a single space.
func Name(s string) string {
	return spacesRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

func Email(s string) string {
	return strings.TrimSpace(s)
}

// TextField trims `s` and normalises line endings to "\n".
func TextField(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
