package scraper

import "sync"

// Cache memoizes fetch results for the duration of one pipeline run, keyed by
// source identifier. Each key is written at most once; later writes are
// ignored. A new run starts with a fresh Cache — there is no process-wide
// state and nothing survives the run.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
}

// NewCache creates an empty run-scoped cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]any)}
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// set stores a value unless the key already holds one.
func (c *Cache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = value
}
