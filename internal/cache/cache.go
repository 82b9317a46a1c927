// Package cache provides the persistent response cache: an exact-match
// mapping from a raw query string to a previously computed answer and its
// source citations.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Entry is one cached result.
type Entry struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ResponseCache is an explicit cache object constructed once at process
// initialization and injected into the query path. The whole backing file is
// loaded at construction and rewritten in full on every write; entries never
// expire. Keys are the whitespace-trimmed raw query strings, not normalized
// for case or punctuation, so queries differing only in case miss each other.
// That is a documented limitation of the cache contract.
//
// The mutex guards concurrent HTTP requests within this process; across
// processes the file has a single-writer assumption and no locking.
type ResponseCache struct {
	path    string
	mu      sync.Mutex
	entries map[string]Entry
}

// New creates a cache backed by the file at path, loading any prior content.
// A missing file yields an empty cache, not an error.
func New(path string) (*ResponseCache, error) {
	c := &ResponseCache{
		path:    path,
		entries: make(map[string]Entry),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read cache file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &c.entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache file %s: %w", path, err)
	}
	return c, nil
}

// Get looks up a query by exact trimmed-string match.
func (c *ResponseCache) Get(query string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[strings.TrimSpace(query)]
	return entry, ok
}

// Put stores the result for a query and persists the full mapping.
func (c *ResponseCache) Put(query, answer string, sources []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[strings.TrimSpace(query)] = Entry{Answer: answer, Sources: sources}
	return c.flush()
}

// Len returns the number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// flush rewrites the whole mapping as pretty UTF-8 JSON, Cyrillic verbatim,
// through a temp file and rename. Caller must hold the mutex.
func (c *ResponseCache) flush() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.entries); err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, ".cache-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close cache file: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
