// Package store provides SQLite-backed caching of tagged documents.
// POS tagging dominates the pipeline's runtime, so re-runs over the same
// survey export reuse the cached tags instead of re-tagging every comment.
// Uses ncruces/go-sqlite3/driver which provides a database/sql interface.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/feedbacklens/phrasekit/pkg/chunker"
)

const schema = `
CREATE TABLE IF NOT EXISTS pos_cache (
    comment_key TEXT PRIMARY KEY,
    tags TEXT NOT NULL,
    created_at INTEGER NOT NULL DEFAULT (unixepoch())
);
`

// TagCache is a SQLite-backed cache of tagged documents keyed by a stable
// comment key (typically a hash or row identifier). Safe for concurrent use.
type TagCache struct {
	mu sync.RWMutex
	db *sql.DB
}

// OpenTagCache opens (or creates) a cache at dsn. Use ":memory:" for an
// ephemeral cache.
func OpenTagCache(dsn string) (*TagCache, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: init schema: %w", err)
	}
	return &TagCache{db: db}, nil
}

// Put stores the tagged document for key, replacing any previous entry.
func (c *TagCache) Put(key string, doc chunker.TaggedDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.db.Exec(`
		INSERT INTO pos_cache (comment_key, tags) VALUES (?, ?)
		ON CONFLICT(comment_key) DO UPDATE SET tags = excluded.tags
	`, key, string(payload))
	return err
}

// Get returns the cached document for key. A miss is (nil, false, nil):
// expected, not an error.
func (c *TagCache) Get(key string) (chunker.TaggedDocument, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var payload string
	err := c.db.QueryRow(`SELECT tags FROM pos_cache WHERE comment_key = ?`, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var doc chunker.TaggedDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, false, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return doc, true, nil
}

// Count returns the number of cached documents.
func (c *TagCache) Count() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM pos_cache`).Scan(&n)
	return n, err
}

// Close releases the underlying database.
func (c *TagCache) Close() error {
	return c.db.Close()
}
