package slogx

import (
	"log/slog"
	"strings"
	"unicode/utf8"
)

// RedactPrefixLen is how many leading characters of a secret survive redaction.
const RedactPrefixLen = 6

// Redact keeps the first RedactPrefixLen characters of s and replaces the rest
// with a single ellipsis. Values no longer than the prefix are fully masked so
// short secrets do not leak whole.
func Redact(s string) string {
	if s == "" {
		return ""
	}
	if utf8.RuneCountInString(s) <= RedactPrefixLen {
		return "…"
	}
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == RedactPrefixLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString("…")
	return b.String()
}

// Token returns a redacted attribute for an invitation or signup token.
func Token(key, token string) slog.Attr {
	return slog.String(key, Redact(token))
}

// Email returns a redacted attribute for an email address.
func Email(key, email string) slog.Attr {
	return slog.String(key, Redact(email))
}
