package cache

import "time"

// LayeredCache pairs a short-lived fresh layer with a long-lived
// last-known-good layer. Fresh hits skip the API entirely; last-known-good
// entries are served only when the API is unreachable.
type LayeredCache struct {
	fresh Cache
	stale Cache
}

// NewLayeredCache creates a layered cache. With an empty diskDir the
// last-known-good layer is kept in memory.
func NewLayeredCache(freshTTL time.Duration, diskDir string, staleTTL time.Duration) *LayeredCache {
	var stale Cache
	if diskDir != "" {
		stale = NewDiskCache(diskDir, staleTTL)
	} else {
		stale = NewMemoryCache(staleTTL, 10*time.Minute)
	}
	return &LayeredCache{
		fresh: NewMemoryCache(freshTTL, time.Minute),
		stale: stale,
	}
}

// Get returns a fresh entry only
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	return c.fresh.Get(key)
}

// LastKnown returns the freshest entry available from either layer
func (c *LayeredCache) LastKnown(key string) ([]byte, bool) {
	if v, ok := c.fresh.Get(key); ok {
		return v, true
	}
	return c.stale.Get(key)
}

// Set stores value in both layers, each with its own TTL
func (c *LayeredCache) Set(key string, value []byte, _ time.Duration) error {
	if err := c.fresh.Set(key, value, 0); err != nil {
		return err
	}
	return c.stale.Set(key, value, 0)
}

// Delete removes key from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.fresh.Delete(key)
	return c.stale.Delete(key)
}

// Clear empties both layers
func (c *LayeredCache) Clear() error {
	_ = c.fresh.Clear()
	return c.stale.Clear()
}
