package replay

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/StarsWhere/log-server/internal/capture"
)

// PythonRequests renders the snapshot as a runnable python script using
// the requests library. The body is embedded as decoded text, so this
// replay is UTF-8-only: non-UTF-8 bodies get an explanatory placeholder
// (the log block's base64 field keeps the lossless bytes). Duplicate
// header names collapse last-write-wins in the dict literal; that is an
// accepted limitation of this replay format, not of the log itself.
func PythonRequests(s *capture.Snapshot) string {
	var data string
	switch {
	case len(s.Body) == 0:
		data = ""
	case utf8.Valid(s.Body):
		data = string(s.Body)
	default:
		data = fmt.Sprintf("<non-utf8 body: %d bytes, see base64 field in the log>", len(s.Body))
	}

	var b strings.Builder
	b.WriteString("import requests\n\n")
	b.WriteString("url = " + pyRepr(s.URL) + "\n")
	b.WriteString("headers = " + pyDict(s.Headers) + "\n")
	b.WriteString("data = " + pyRepr(data) + "\n\n")
	b.WriteString("resp = requests.request(" + pyRepr(s.Method) + ", url, headers=headers, data=data)\n")
	b.WriteString("print(resp.status_code)\n")
	b.WriteString("print(resp.text)")
	return b.String()
}

func pyDict(headers []capture.HeaderPair) string {
	if len(headers) == 0 {
		return "{}"
	}
	items := make([]string, 0, len(headers))
	for _, h := range headers {
		items = append(items, pyRepr(h.Name)+": "+pyRepr(h.Value))
	}
	return "{" + strings.Join(items, ", ") + "}"
}

// pyRepr mirrors python's repr() for str: single quotes unless the string
// contains a single quote and no double quote, backslash escapes for the
// quote character and backslash, \n/\r/\t for common whitespace, \xNN for
// other control bytes. Valid multi-byte runes pass through unescaped.
func pyRepr(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}

	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(fmt.Sprintf(`\x%02x`, r))
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
