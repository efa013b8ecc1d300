// Package replay renders captured requests as ready-to-run replay
// commands. Every renderer is a total function: any byte sequence in the
// snapshot produces some valid, escaped output.
package replay

import (
	"strings"
	"unicode/utf8"

	"github.com/StarsWhere/log-server/internal/capture"
)

// quote returns s as a shell-safe single-quoted literal. Embedded single
// quotes use the standard '\'' close-escape-reopen sequence; everything
// else (newlines, backslashes, percent signs, double quotes) is inert
// inside single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Curl renders the snapshot as a single curl command line.
// Non-UTF-8 bodies switch from --data-raw to --data-binary; the quoted
// literal carries the raw bytes either way.
func Curl(s *capture.Snapshot) string {
	parts := []string{"curl", "-i", "-X", s.Method}
	for _, h := range s.Headers {
		parts = append(parts, "-H", quote(h.Name+": "+h.Value))
	}
	if len(s.Body) > 0 {
		flag := "--data-raw"
		if !utf8.Valid(s.Body) {
			flag = "--data-binary"
		}
		parts = append(parts, flag, quote(string(s.Body)))
	}
	parts = append(parts, quote(s.URL))
	return strings.Join(parts, " ")
}

// HTTPie renders the snapshot as an httpie command line: verbose flag,
// method, URL, then Name:value header tokens and the raw body.
func HTTPie(s *capture.Snapshot) string {
	parts := []string{"http", "-v", s.Method, quote(s.URL)}
	for _, h := range s.Headers {
		parts = append(parts, quote(h.Name+":"+h.Value))
	}
	if len(s.Body) > 0 {
		parts = append(parts, "--raw", quote(string(s.Body)))
	}
	return strings.Join(parts, " ")
}
