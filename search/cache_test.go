package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carhive/carhive-api/models"
)

func TestResultCacheServesWithinTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewResultCache(5*time.Minute, func() time.Time { return now })

	cache.Put(AllVehiclesKey, []models.VehicleSummary{{ID: "v1"}})

	// one second before expiry the entry is still served
	now = now.Add(4*time.Minute + 59*time.Second)
	got, ok := cache.Get(AllVehiclesKey)
	assert.True(t, ok)
	assert.Equal(t, "v1", got[0].ID)
}

func TestResultCacheExpiresAtTTL(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewResultCache(5*time.Minute, func() time.Time { return now })

	cache.Put(AllVehiclesKey, []models.VehicleSummary{{ID: "v1"}})

	now = now.Add(5*time.Minute + time.Second)
	got, ok := cache.Get(AllVehiclesKey)
	assert.False(t, ok)
	assert.Nil(t, got)

	// the stale entry was evicted, a fresh Put repopulates
	cache.Put(AllVehiclesKey, []models.VehicleSummary{{ID: "v2"}})
	got, ok = cache.Get(AllVehiclesKey)
	assert.True(t, ok)
	assert.Equal(t, "v2", got[0].ID)
}

func TestResultCacheMissOnUnknownKey(t *testing.T) {
	cache := NewResultCache(5*time.Minute, nil)
	got, ok := cache.Get("nope")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestResultCacheCopiesInAndOut(t *testing.T) {
	cache := NewResultCache(5*time.Minute, nil)

	in := []models.VehicleSummary{{ID: "v1", Price: 100}}
	cache.Put(AllVehiclesKey, in)

	// mutating the caller's slice after Put does not reach the cache
	in[0].Price = 999
	got, ok := cache.Get(AllVehiclesKey)
	assert.True(t, ok)
	assert.Equal(t, float64(100), got[0].Price)

	// mutating a returned slice does not poison later reads
	got[0].Price = 5
	again, _ := cache.Get(AllVehiclesKey)
	assert.Equal(t, float64(100), again[0].Price)
}
