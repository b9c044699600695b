// Package cache provides a hash- and TTL-validated in-memory cache for
// computed artifacts. An entry is served only while the content hash of the
// current input matches the hash it was computed from and the entry is
// within its TTL; anything else triggers transparent recomputation.
package cache

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Entry is one cached artifact. Entries are replaced wholesale on
// recomputation, never mutated in place.
type Entry struct {
	CreatedAt   time.Time
	Value       any
	Key         string
	ContentHash string
	TTL         time.Duration
}

// valid reports whether the entry can serve a request with the given input
// hash at the given time.
func (e Entry) valid(inputHash string, now time.Time) bool {
	return e.ContentHash == inputHash && now.Sub(e.CreatedAt) < e.TTL
}

// Stats summarizes cache effectiveness for debugging.
type Stats struct {
	Entries int
	Hits    int
	Misses  int
}

// Cache is a content-hash and TTL validated cache. The single mutex covers
// the whole check-then-compute-then-store sequence so concurrent callers
// never both recompute the same key or observe a half-written entry; write
// frequency is low enough (user-triggered refreshes, once per TTL) that the
// coarse lock is not a bottleneck.
type Cache struct {
	now        func() time.Time
	entries    map[string]Entry
	defaultTTL time.Duration
	hits       int
	misses     int
	mu         sync.Mutex
}

// New creates a cache with the given default TTL, used when GetOrCompute is
// called with a zero TTL.
func New(defaultTTL time.Duration) *Cache {
	return &Cache{
		entries:    make(map[string]Entry),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

// GetOrCompute returns the cached value for key when its entry is still
// valid for inputHash, and otherwise invokes compute, stores the result as a
// fresh entry, and returns it. A compute error is returned as-is and nothing
// is stored.
func (c *Cache) GetOrCompute(key, inputHash string, ttl time.Duration, compute func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if entry, ok := c.entries[key]; ok && entry.valid(inputHash, c.now()) {
		c.hits++
		slog.Debug("cache hit", "key", key)
		return entry.Value, nil
	}

	c.misses++
	slog.Debug("cache miss", "key", key)
	value, err := compute()
	if err != nil {
		return nil, err
	}

	c.entries[key] = Entry{
		Key:         key,
		ContentHash: inputHash,
		Value:       value,
		CreatedAt:   c.now(),
		TTL:         ttl,
	}
	return value, nil
}

// Invalidate removes an entry unconditionally.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll clears every entry, used by manual refresh actions.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := len(c.entries)
	c.entries = make(map[string]Entry)
	slog.Debug("cache cleared", "entries", count)
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Entries: len(c.entries),
		Hits:    c.hits,
		Misses:  c.misses,
	}
}

// ContentHash computes the content-based hash used for cache validation.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
