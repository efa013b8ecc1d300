//go:build !e2e
// +build !e2e

package logfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "requests.log")

	w, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append("block\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "block\n", string(data))
}

func TestOpen_AppendsToExistingLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0644))

	w, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append("new\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old\nnew\n", string(data))
}

func TestOpen_Truncate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0644))

	w, err := Open(Options{Path: path, Truncate: true})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append("fresh\n"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(data))
}

func TestOpen_Echo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	var console bytes.Buffer

	w, err := Open(Options{Path: path, Echo: &console})
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append("block\n"))

	assert.Equal(t, "block\n", console.String())
}

func TestWriter_ConcurrentAppendsDoNotInterleave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.log")
	w, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer w.Close()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			block := fmt.Sprintf("----- REQUEST START %d -----\nbody %d\n----- REQUEST END %d -----\n", i, i, i)
			assert.NoError(t, w.Append(block))
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Every block must be present as one contiguous run of bytes.
	for i := 0; i < n; i++ {
		block := fmt.Sprintf("----- REQUEST START %d -----\nbody %d\n----- REQUEST END %d -----\n", i, i, i)
		assert.Contains(t, string(data), block)
	}
	starts := regexp.MustCompile(`(?m)^----- REQUEST START `).FindAllString(string(data), -1)
	assert.Len(t, starts, n)
}

type failingSink struct{}

func (failingSink) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriter_AppendSurfacesSinkError(t *testing.T) {
	w := NewWriter(failingSink{})

	err := w.Append("block\n")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "disk full"))
}

type shortSink struct{}

func (shortSink) Write(p []byte) (int, error) {
	if len(p) > 1 {
		return 1, nil
	}
	return len(p), nil
}

func TestWriter_ShortWriteIsAnError(t *testing.T) {
	w := NewWriter(shortSink{})

	err := w.Append("block\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "short write")
}
