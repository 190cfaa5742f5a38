package texture

import (
	"sync"

	"shirtforge/internal/logging"
)

// Cache loads each texture reference once. A failed load is remembered so
// callers can skip the decal every frame without retrying or re-logging.
type Cache[T any] struct {
	load    func(ref string) (T, error)
	release func(T)

	mu      sync.Mutex
	entries map[string]cacheEntry[T]
}

type cacheEntry[T any] struct {
	value T
	ok    bool
}

// NewCache creates a cache. release may be nil.
func NewCache[T any](load func(string) (T, error), release func(T)) *Cache[T] {
	return &Cache[T]{
		load:    load,
		release: release,
		entries: make(map[string]cacheEntry[T]),
	}
}

// Get returns the texture for ref, loading it on first use.
func (c *Cache[T]) Get(ref string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[ref]; ok {
		return e.value, e.ok
	}
	v, err := c.load(ref)
	if err != nil {
		logging.L().Warn("texture: missing, decal skipped", "ref", shorten(ref), "err", err)
		var zero T
		c.entries[ref] = cacheEntry[T]{}
		return zero, false
	}
	c.entries[ref] = cacheEntry[T]{value: v, ok: true}
	return v, true
}

// Forget drops ref so the next Get retries the load.
func (c *Cache[T]) Forget(ref string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[ref]; ok {
		if e.ok && c.release != nil {
			c.release(e.value)
		}
		delete(c.entries, ref)
	}
}

// Retain drops every entry whose ref is not in keep.
func (c *Cache[T]) Retain(keep map[string]bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ref, e := range c.entries {
		if keep[ref] {
			continue
		}
		if e.ok && c.release != nil {
			c.release(e.value)
		}
		delete(c.entries, ref)
	}
}

func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear releases everything.
func (c *Cache[T]) Clear() {
	c.Retain(nil)
}

func shorten(ref string) string {
	if len(ref) > 64 {
		return ref[:64] + "..."
	}
	return ref
}
