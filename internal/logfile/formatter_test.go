//go:build !e2e
// +build !e2e

package logfile

import (
	"strings"
	"testing"
	"time"

	"github.com/StarsWhere/log-server/internal/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pingSnapshot() *capture.Snapshot {
	return &capture.Snapshot{
		Timestamp:  time.Date(2024, 5, 1, 12, 30, 45, 0, time.Local),
		ClientAddr: "192.0.2.1",
		Method:     "POST",
		Path:       "/hello",
		URL:        "http://localhost:6565/hello",
		Headers:    []capture.HeaderPair{{Name: "X-Demo", Value: "test"}},
		Body:       []byte("ping"),
		BodyLength: 4,
		BodyUTF8:   "ping",
		BodyBase64: "cGluZw==",
	}
}

func TestFormatBlock_Golden(t *testing.T) {
	want := strings.Join([]string{
		"----- REQUEST START 2024-05-01T12:30:45 -----",
		"client: 192.0.2.1",
		"method: POST",
		"path: /hello",
		"url: http://localhost:6565/hello",
		"headers:",
		"  - X-Demo: test",
		"body:",
		"  length: 4 bytes",
		"  utf8: ping",
		"  base64: cGluZw==",
		"replay:",
		"  curl: |",
		"    curl -i -X POST -H 'X-Demo: test' --data-raw 'ping' 'http://localhost:6565/hello'",
		"  httpie: |",
		"    http -v POST 'http://localhost:6565/hello' 'X-Demo:test' --raw 'ping'",
		"  python_requests: |",
		"    import requests",
		"    ",
		"    url = 'http://localhost:6565/hello'",
		"    headers = {'X-Demo': 'test'}",
		"    data = 'ping'",
		"    ",
		"    resp = requests.request('POST', url, headers=headers, data=data)",
		"    print(resp.status_code)",
		"    print(resp.text)",
		"----- REQUEST END 2024-05-01T12:30:45 -----",
		"",
	}, "\n")

	assert.Equal(t, want, FormatBlock(pingSnapshot()))
}

func TestFormatBlock_Deterministic(t *testing.T) {
	s := pingSnapshot()
	assert.Equal(t, FormatBlock(s), FormatBlock(s))
}

func TestFormatBlock_SameTimestampOnBothMarkers(t *testing.T) {
	block := FormatBlock(pingSnapshot())

	assert.Contains(t, block, "----- REQUEST START 2024-05-01T12:30:45 -----")
	assert.Contains(t, block, "----- REQUEST END 2024-05-01T12:30:45 -----")
}

func TestFormatBlock_NoHeaders(t *testing.T) {
	s := pingSnapshot()
	s.Headers = nil

	block := FormatBlock(s)

	assert.Contains(t, block, "headers:\n  - (none)\nbody:")
}

func TestFormatBlock_HeaderOrderPreserved(t *testing.T) {
	s := pingSnapshot()
	s.Headers = []capture.HeaderPair{
		{Name: "X-A", Value: "1"},
		{Name: "X-A", Value: "2"},
		{Name: "X-B", Value: "3"},
	}

	block := FormatBlock(s)

	require.Contains(t, block, "headers:\n  - X-A: 1\n  - X-A: 2\n  - X-B: 3\nbody:")
}

func TestFormatBlock_MultilineReplayIndentation(t *testing.T) {
	block := FormatBlock(pingSnapshot())

	start := strings.Index(block, "  python_requests: |\n")
	require.GreaterOrEqual(t, start, 0)
	end := strings.Index(block, "----- REQUEST END")
	section := block[start+len("  python_requests: |\n") : end]
	for _, line := range strings.Split(strings.TrimSuffix(section, "\n"), "\n") {
		assert.True(t, strings.HasPrefix(line, "    "), "line not indented: %q", line)
	}
}
