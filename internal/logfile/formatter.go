// Package logfile renders capture log blocks and appends them to the
// request log under a single-writer discipline.
package logfile

import (
	"fmt"
	"strings"

	"github.com/StarsWhere/log-server/internal/capture"
	"github.com/StarsWhere/log-server/internal/replay"
)

const replayIndent = "    "

// FormatBlock renders the canonical log block for one snapshot. Output
// is deterministic: identical snapshots produce identical bytes. Both
// the START and END markers carry the snapshot's capture instant.
func FormatBlock(s *capture.Snapshot) string {
	ts := s.Timestamp.Format(capture.TimestampLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "----- REQUEST START %s -----\n", ts)
	fmt.Fprintf(&b, "client: %s\n", s.ClientAddr)
	fmt.Fprintf(&b, "method: %s\n", s.Method)
	fmt.Fprintf(&b, "path: %s\n", s.Path)
	fmt.Fprintf(&b, "url: %s\n", s.URL)
	b.WriteString("headers:\n")
	if len(s.Headers) == 0 {
		b.WriteString("  - (none)\n")
	} else {
		for _, h := range s.Headers {
			fmt.Fprintf(&b, "  - %s: %s\n", h.Name, h.Value)
		}
	}
	b.WriteString("body:\n")
	fmt.Fprintf(&b, "  length: %d bytes\n", s.BodyLength)
	fmt.Fprintf(&b, "  utf8: %s\n", s.BodyUTF8)
	fmt.Fprintf(&b, "  base64: %s\n", s.BodyBase64)
	b.WriteString("replay:\n")
	b.WriteString("  curl: |\n")
	b.WriteString(indent(replay.Curl(s)))
	b.WriteString("  httpie: |\n")
	b.WriteString(indent(replay.HTTPie(s)))
	b.WriteString("  python_requests: |\n")
	b.WriteString(indent(replay.PythonRequests(s)))
	fmt.Fprintf(&b, "----- REQUEST END %s -----\n", ts)
	return b.String()
}

// indent prefixes every line with four spaces and guarantees a trailing
// newline, so multi-line replays nest under their key.
func indent(s string) string {
	lines := strings.Split(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(replayIndent)
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
