// Package response holds the fixed response served for every request.
package response

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const fallbackContentType = "text/plain; charset=utf-8"

// Cache is the immutable response body and content type, loaded exactly
// once before the listener starts. Concurrent reads need no locking:
// nothing mutates it after Load returns.
type Cache struct {
	Body        []byte
	ContentType string
}

// Load reads the response file and fixes the content type for the
// process lifetime. Changes to the file on disk after this point have
// no effect until restart. contentType, when non-empty, overrides
// detection.
func Load(path, contentType string) (*Cache, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read response file %s: %w", path, err)
	}
	if contentType == "" {
		contentType = detectContentType(path, body)
	}
	return &Cache{Body: body, ContentType: contentType}, nil
}

// detectContentType guesses from the file extension first, then sniffs
// the content, then falls back to plain text. Bare text/* types get a
// utf-8 charset appended.
func detectContentType(path string, body []byte) string {
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = mimetype.Detect(body).String()
	}
	if ct == "" {
		return fallbackContentType
	}
	if strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "charset") {
		ct += "; charset=utf-8"
	}
	return ct
}
