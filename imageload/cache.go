package imageload

import (
	"context"
	"sync"
)

// Cache keeps decoded bitmaps keyed by file path so repeated sticker
// insertions of the same file skip disk and decode.
//
// Cache is safe for concurrent use. Cached bitmaps stay in memory until
// Evict or Clear. Different spellings of the same path are separate entries.
type Cache struct {
	loader *Loader

	mu    sync.RWMutex
	items map[string]*Bitmap
}

// NewCache returns an empty cache loading through l.
func NewCache(l *Loader) *Cache {
	return &Cache{
		loader: l,
		items:  make(map[string]*Bitmap),
	}
}

// Load returns the cached bitmap for path, loading it on a miss. Failed loads
// are not cached.
func (c *Cache) Load(ctx context.Context, path string) (*Bitmap, error) {
	c.mu.RLock()
	if bm, ok := c.items[path]; ok {
		c.mu.RUnlock()
		return bm, nil
	}
	c.mu.RUnlock()

	bm, err := c.loader.LoadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.items[path] = bm
	c.mu.Unlock()
	return bm, nil
}

// Len returns the number of cached bitmaps.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Evict removes path from the cache.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.items, path)
	c.mu.Unlock()
}

// Clear removes every cached bitmap.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]*Bitmap)
	c.mu.Unlock()
}
