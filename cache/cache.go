package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// PageCache stores rendered responses as opaque byte blobs. Within the
// TTL window readers get the stored copy even when the underlying rows
// changed; expiry and Clear are the only invalidation paths.
type PageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte, ttl time.Duration)
	Clear()
}

type pageCache struct {
	store *gocache.Cache
}

// NewPageCache builds a TTL cache. defaultTTL applies when Set is
// called with a non-positive duration.
func NewPageCache(defaultTTL time.Duration) PageCache {
	return &pageCache{
		store: gocache.New(defaultTTL, time.Minute),
	}
}

func (c *pageCache) Get(key string) ([]byte, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

func (c *pageCache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	// Copy so later writes to the handler buffer cannot mutate the
	// cached response.
	stored := make([]byte, len(body))
	copy(stored, body)
	c.store.Set(key, stored, ttl)
}

func (c *pageCache) Clear() {
	c.store.Flush()
}
