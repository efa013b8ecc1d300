package logfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the capture log sink.
type Options struct {
	Path       string
	Truncate   bool      // wipe any existing log at startup
	Echo       io.Writer // optional second sink (console), nil disables
	MaxSizeMB  int       // lumberjack rotation threshold, 0 means plain append
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Writer appends whole log blocks to the capture log. A single mutex
// serializes appends so blocks from concurrent requests never interleave.
type Writer struct {
	mu   sync.Mutex
	sink io.Writer
	file io.Closer
}

// Open prepares the capture log sink, creating the parent directory if
// needed. With rotation enabled the sink is a lumberjack logger;
// otherwise a plain append-mode file handle. All requests share this one
// handle; nothing else may open the log for writing.
func Open(opts Options) (*Writer, error) {
	dir := filepath.Dir(opts.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir %s: %w", dir, err)
		}
	}

	if opts.Truncate {
		if err := os.Remove(opts.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("clear log %s: %w", opts.Path, err)
		}
	}

	var sink io.Writer
	var file io.Closer
	if opts.MaxSizeMB > 0 {
		lj := &lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		sink, file = lj, lj
	} else {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log %s: %w", opts.Path, err)
		}
		sink, file = f, f
	}

	if opts.Echo != nil {
		sink = io.MultiWriter(sink, opts.Echo)
	}

	return &Writer{sink: sink, file: file}, nil
}

// NewWriter wraps an existing sink. Used by tests and by callers that
// manage the underlying handle themselves.
func NewWriter(sink io.Writer) *Writer {
	return &Writer{sink: sink}
}

// Append writes one block atomically with respect to other appends.
// A short write is an error: a half-written block corrupts the log.
func (w *Writer) Append(block string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := io.WriteString(w.sink, block)
	if err != nil {
		return fmt.Errorf("append log block: %w", err)
	}
	if n != len(block) {
		return fmt.Errorf("append log block: short write (%d of %d bytes)", n, len(block))
	}
	return nil
}

// Close releases the underlying handle.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
