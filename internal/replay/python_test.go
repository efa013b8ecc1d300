//go:build !e2e
// +build !e2e

package replay

import (
	"strings"
	"testing"

	"github.com/StarsWhere/log-server/internal/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPyRepr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "ping", "'ping'"},
		{"empty", "", "''"},
		{"single quote switches to double", "it's", `"it's"`},
		{"double quote keeps single", `say "hi"`, `'say "hi"'`},
		{"both quotes escapes single", `'"`, `'\'"'`},
		{"newline", "a\nb", `'a\nb'`},
		{"carriage return", "a\rb", `'a\rb'`},
		{"tab", "a\tb", `'a\tb'`},
		{"backslash", `a\b`, `'a\\b'`},
		{"control byte", "a\x01b", `'a\x01b'`},
		{"percent untouched", "100%", "'100%'"},
		{"unicode untouched", "héllo", "'héllo'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pyRepr(tt.in))
		})
	}
}

func TestPythonRequests_Scenario(t *testing.T) {
	s := snap("POST", "http://localhost:6565/hello",
		[]capture.HeaderPair{{Name: "X-Demo", Value: "test"}},
		[]byte("ping"))

	script := PythonRequests(s)

	assert.Contains(t, script, "import requests")
	assert.Contains(t, script, "url = 'http://localhost:6565/hello'")
	assert.Contains(t, script, "headers = {'X-Demo': 'test'}")
	assert.Contains(t, script, "data = 'ping'")
	assert.Contains(t, script, "resp = requests.request('POST', url, headers=headers, data=data)")
	assert.Contains(t, script, "print(resp.status_code)")
	assert.True(t, strings.HasSuffix(script, "print(resp.text)"))
}

func TestPythonRequests_EmptyBody(t *testing.T) {
	s := snap("GET", "http://h/", nil, nil)

	script := PythonRequests(s)

	assert.Contains(t, script, "headers = {}")
	assert.Contains(t, script, "data = ''")
}

func TestPythonRequests_NonUTF8BodyPlaceholder(t *testing.T) {
	s := snap("POST", "http://h/bin", nil, []byte{0xff, 0xfe, 0x00})

	script := PythonRequests(s)

	assert.Contains(t, script, "data = '<non-utf8 body: 3 bytes, see base64 field in the log>'")
	assert.NotContains(t, script, "\xff")
}

func TestPythonRequests_DuplicateHeadersLastWriteWins(t *testing.T) {
	// Duplicate names render as repeated dict keys; python keeps the last.
	s := snap("GET", "http://h/", []capture.HeaderPair{
		{Name: "X-A", Value: "1"},
		{Name: "X-A", Value: "2"},
	}, nil)

	script := PythonRequests(s)

	assert.Contains(t, script, "headers = {'X-A': '1', 'X-A': '2'}")
}

func TestPythonRequests_BodyWithNewlinesStaysOneLiteral(t *testing.T) {
	s := snap("POST", "http://h/", nil, []byte("line1\nline2\n"))

	script := PythonRequests(s)

	require.Contains(t, script, `data = 'line1\nline2\n'`)
	// The literal itself must not introduce raw newlines into the script.
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(line, "data = ") {
			assert.Equal(t, `data = 'line1\nline2\n'`, line)
		}
	}
}
