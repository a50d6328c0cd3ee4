package store

import (
	"context"
	"sync"
	"time"
)

// MemoryCache keeps heatmaps in a map.
//
// MemoryCache is safe for concurrent use. Entries stay in memory until
// evicted with Evict or Clear; long-running processes rendering many images
// should clear it periodically.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[Key]Entry
	now     func() time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[Key]Entry),
		now:     time.Now,
	}
}

// Get implements LayerCache.
func (c *MemoryCache) Get(_ context.Context, key Key) (Entry, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return Entry{}, false, nil
	}
	e.PNG = append([]byte(nil), e.PNG...)
	return e, true, nil
}

// Put implements LayerCache. The PNG bytes are copied.
func (c *MemoryCache) Put(_ context.Context, key Key, entry Entry) error {
	entry.PNG = append([]byte(nil), entry.PNG...)
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = c.now()
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// MarkStale implements LayerCache.
func (c *MemoryCache) MarkStale(_ context.Context, imageID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if k.ImageID != imageID || e.Stale {
			continue
		}
		e.Stale = true
		c.entries[k] = e
		n++
	}
	return n, nil
}

// Evict removes a single entry. Missing keys are ignored.
func (c *MemoryCache) Evict(key Key) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[Key]Entry)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
