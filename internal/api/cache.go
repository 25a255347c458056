package api

import (
	"sync"
	"time"

	"github.com/vmunix/coursarr/internal/extract"
)

type cacheEntry struct {
	content *extract.Content
	expires time.Time
}

type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newCache(ttl time.Duration) *cache {
	return &cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *cache) get(key string) (*extract.Content, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.content, true
}

func (c *cache) set(key string, content *extract.Content) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		content: content,
		expires: time.Now().Add(c.ttl),
	}
}
