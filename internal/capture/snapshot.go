// Package capture builds immutable snapshots of inbound HTTP requests.
package capture

import (
	"encoding/base64"
	"net/http"
	"sort"
	"time"
	"unicode/utf8"
)

// NonUTF8Placeholder is substituted for the decoded body when the raw
// bytes are not valid UTF-8. The base64 field stays lossless either way.
const NonUTF8Placeholder = "<non-utf8 data>"

// TimestampLayout is the capture-instant format used in log block markers.
const TimestampLayout = "2006-01-02T15:04:05"

// HeaderPair is a single header name/value pair. Duplicate names are kept
// as separate pairs, never merged.
type HeaderPair struct {
	Name  string
	Value string
}

// Snapshot is an immutable record of one inbound request. All fields are
// fixed at build time; renderers and the formatter only ever read it.
type Snapshot struct {
	Timestamp  time.Time
	ClientAddr string
	Method     string
	Path       string
	URL        string
	Headers    []HeaderPair
	Body       []byte

	BodyLength int
	BodyUTF8   string
	BodyBase64 string
}

// New builds a Snapshot from an already-drained request body. The caller
// must have read body to completion; a failed read means no snapshot.
//
// fallbackHost is used to reconstruct the absolute URL when the request
// carries no Host header (typically the server's bound host:port).
func New(r *http.Request, body []byte, clientAddr, fallbackHost string) *Snapshot {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	host := r.Host
	if host == "" {
		host = fallbackHost
	}

	s := &Snapshot{
		Timestamp:  time.Now(),
		ClientAddr: clientAddr,
		Method:     r.Method,
		Path:       r.URL.Path,
		URL:        scheme + "://" + host + r.URL.RequestURI(),
		Headers:    orderedHeaders(r.Header),
		Body:       body,
		BodyLength: len(body),
		BodyUTF8:   decodeBody(body),
		BodyBase64: encodeBody(body),
	}
	return s
}

// orderedHeaders flattens an http.Header map into pairs with a stable
// order: names sorted lexicographically, each name's values in wire
// order. net/http canonicalizes names and does not retain the original
// order across distinct names, so sorting is the deterministic choice;
// the same order then flows into the log block and every replay.
func orderedHeaders(h http.Header) []HeaderPair {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]HeaderPair, 0, len(h))
	for _, name := range names {
		for _, v := range h[name] {
			pairs = append(pairs, HeaderPair{Name: name, Value: v})
		}
	}
	return pairs
}

// decodeBody is a total function: it never fails, substituting a
// placeholder when the bytes are not valid UTF-8.
func decodeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !utf8.Valid(body) {
		return NonUTF8Placeholder
	}
	return string(body)
}

func encodeBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(body)
}
