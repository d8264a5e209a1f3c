package driver

import (
	"sync"

	"hilite/internal/token"
)

// MemCache is a per-process cache of token trees by cache key. Identical
// files of a directory run are tokenized once.
type MemCache struct {
	mu    sync.RWMutex
	byKey map[Digest]token.Stream
}

// NewMemCache creates a MemCache with the given capacity hint.
func NewMemCache(capHint int) *MemCache {
	return &MemCache{byKey: make(map[Digest]token.Stream, capHint)}
}

// Get returns the cached stream. Spans carry the file ID of the file that
// was tokenized first; callers rebind them.
func (c *MemCache) Get(key Digest) (token.Stream, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	s, ok := c.byKey[key]
	c.mu.RUnlock()
	return s, ok
}

// Put inserts a stream into the cache.
func (c *MemCache) Put(key Digest, s token.Stream) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.byKey[key] = s
	c.mu.Unlock()
}

// Len returns the number of cached streams.
func (c *MemCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byKey)
}
