// Package cache implements the result cache: rendered output memoized by a
// content fingerprint plus render options, with per-entry expiry and a
// bounded total size. It is the engine's only piece of process-wide shared
// state; bookkeeping is guarded by a single mutex with short critical
// sections while rendering itself runs outside the lock.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"jsonlens/types"
)

type entry struct {
	value     string
	createdAt time.Time
	expiresAt time.Time
	size      int
}

// ResultCache memoizes rendered output. Entries past their expiry are
// treated as absent and purged opportunistically on access; there is no
// background timer. When inserting would exceed the byte cap, entries are
// evicted oldest-expiry-first until the new entry fits.
type ResultCache struct {
	mu        sync.Mutex
	entries   map[string]*entry
	totalSize int
	maxBytes  int
	ttl       time.Duration

	now func() time.Time // replaceable for tests
}

// Default sizing, used when the configured values are zero or negative
const (
	DefaultTTL      = 5 * time.Minute
	DefaultMaxBytes = 16 * 1024 * 1024
)

// New creates a ResultCache with the given entry TTL and total byte cap
func New(ttl time.Duration, maxBytes int) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &ResultCache{
		entries:  make(map[string]*entry),
		maxBytes: maxBytes,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Key derives the cache key from the document content and the render
// options. Identical content rendered with identical options shares one
// entry; any difference in either produces a different key.
func Key(content []byte, opts types.RenderOptions) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(opts.Fingerprint()))
	return hex.EncodeToString(h.Sum(nil))
}

// GetOrRender returns the cached value for key, or executes renderFn,
// stores its result and returns it. The second return value reports whether
// the call was served from the cache.
func (c *ResultCache) GetOrRender(key string, renderFn func() (string, error)) (string, bool, error) {
	c.mu.Lock()
	c.purgeExpiredLocked()
	if e, ok := c.entries[key]; ok {
		value := e.value
		c.mu.Unlock()
		return value, true, nil
	}
	c.mu.Unlock()

	// The expensive part happens outside the lock; only the store is guarded
	value, err := renderFn()
	if err != nil {
		return "", false, err
	}
	c.store(key, value)
	return value, false, nil
}

func (c *ResultCache) store(key, value string) {
	size := len(key) + len(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if size > c.maxBytes {
		// Larger than the whole budget, not cacheable
		return
	}
	if old, ok := c.entries[key]; ok {
		c.totalSize -= old.size
		delete(c.entries, key)
	}
	for c.totalSize+size > c.maxBytes {
		if !c.evictOldestLocked() {
			break
		}
	}
	now := c.now()
	c.entries[key] = &entry{
		value:     value,
		createdAt: now,
		expiresAt: now.Add(c.ttl),
		size:      size,
	}
	c.totalSize += size
}

// purgeExpiredLocked removes entries past their expiry. Amortized cleanup on
// access keeps the cache timer-free.
func (c *ResultCache) purgeExpiredLocked() {
	now := c.now()
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			c.totalSize -= e.size
			delete(c.entries, key)
		}
	}
}

// evictOldestLocked removes the entry with the earliest expiry. Returns
// false when the cache is already empty.
func (c *ResultCache) evictOldestLocked() bool {
	var oldestKey string
	var oldest *entry
	for key, e := range c.entries {
		if oldest == nil || e.expiresAt.Before(oldest.expiresAt) {
			oldestKey, oldest = key, e
		}
	}
	if oldest == nil {
		return false
	}
	c.totalSize -= oldest.size
	delete(c.entries, oldestKey)
	return true
}

// Len returns the number of resident entries
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Size returns the total resident size in bytes
func (c *ResultCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalSize
}

// Clear drops every entry; called at process shutdown so no entry outlives
// the process.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
	c.totalSize = 0
}
