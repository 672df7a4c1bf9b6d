package search

import (
	"sync"
	"time"

	"github.com/carhive/carhive-api/models"
)

// AllVehiclesKey is the only cache key in use: the browse flow loads the
// whole collection once and applies filters in memory, so per-filter keys
// would never hit.
const AllVehiclesKey = "vehicles:all"

// DefaultCacheTTL is how long a cached collection is served before the next
// read refetches
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	payload  []models.VehicleSummary
	storedAt time.Time
}

// ResultCache is an in-process, time-expiring cache of vehicle summaries.
// Entries are copied on the way in and out so callers can never mutate the
// cached slice. Expired entries are evicted lazily on read. The clock is
// injectable for tests.
type ResultCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

// NewResultCache returns a cache with the given TTL. A nil clock defaults
// to time.Now.
func NewResultCache(ttl time.Duration, clock func() time.Time) *ResultCache {
	if clock == nil {
		clock = time.Now
	}
	return &ResultCache{
		ttl:     ttl,
		now:     clock,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns a copy of the cached payload for key if the entry is still
// fresh. A stale entry is evicted and reported as a miss.
func (c *ResultCache) Get(key string) ([]models.VehicleSummary, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if c.now().Sub(entry.storedAt) >= c.ttl {
		c.mu.Lock()
		// re-check under the write lock, a concurrent Put may have refreshed it
		if cur, ok := c.entries[key]; ok && c.now().Sub(cur.storedAt) >= c.ttl {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return copySummaries(entry.payload), true
}

// Put stores a copy of payload under key, stamped with the current time
func (c *ResultCache) Put(key string, payload []models.VehicleSummary) {
	entry := cacheEntry{
		payload:  copySummaries(payload),
		storedAt: c.now(),
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

func copySummaries(in []models.VehicleSummary) []models.VehicleSummary {
	out := make([]models.VehicleSummary, len(in))
	copy(out, in)
	return out
}
