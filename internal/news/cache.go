package news

import (
	"sync"
	"time"
)

// seenCache remembers article ids for a while so repeated runs within a day
// do not crawl the same article body twice.
type seenCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

type cacheEntry struct {
	content   string
	timestamp time.Time
}

func newSeenCache(ttl time.Duration) *seenCache {
	return &seenCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
		now:  time.Now,
	}
}

// get retrieves cached content if valid
func (c *seenCache) get(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[id]
	if !exists {
		return "", false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		return "", false
	}
	return entry.content, true
}

func (c *seenCache) set(id, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[id] = &cacheEntry{
		content:   content,
		timestamp: c.now(),
	}
}

// cleanup removes expired entries
func (c *seenCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, id)
		}
	}
}

func (c *seenCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
