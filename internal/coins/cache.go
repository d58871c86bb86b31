package coins

import (
	"sync"
	"time"

	"github.com/afuentes/suicoin/internal/model"
)

// MetadataTTL bounds how long a cached metadata entry is served.
const MetadataTTL = 5 * time.Minute

type cacheEntry struct {
	meta       model.TokenMetadata
	insertedAt time.Time
}

// MetadataCache is a process-wide TTL cache of per-coin-type metadata.
// A stale entry is never returned; the caller refetches and Set overwrites
// the whole entry. Growth is unbounded, which is acceptable for the small
// coin-type space one process sees.
type MetadataCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMetadataCache() *MetadataCache {
	return &MetadataCache{
		entries: make(map[string]cacheEntry),
		ttl:     MetadataTTL,
		now:     time.Now,
	}
}

func (c *MetadataCache) Get(coinType string) (model.TokenMetadata, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[coinType]
	if !ok {
		return model.TokenMetadata{}, false
	}
	if c.now().Sub(entry.insertedAt) >= c.ttl {
		return model.TokenMetadata{}, false
	}
	return entry.meta, true
}

func (c *MetadataCache) Set(coinType string, meta model.TokenMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[coinType] = cacheEntry{meta: meta, insertedAt: c.now()}
}
