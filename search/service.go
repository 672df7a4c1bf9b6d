package search

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
)

// DefaultMaxHits caps how many ranked ids a keyword search requests from
// the index
const DefaultMaxHits = 100

// Service implements the two search flows: keyword search against the
// hosted index (Flow 1) and the cached full-collection load that backs
// filtered browsing (Flow 2).
type Service struct {
	Index    Index
	Vehicles databases.VehicleDatabase
	Cache    *ResultCache
	MaxHits  int
}

// NewService wires a search service; maxHits <= 0 falls back to
// DefaultMaxHits
func NewService(index Index, vehicles databases.VehicleDatabase, cache *ResultCache, maxHits int) *Service {
	if maxHits <= 0 {
		maxHits = DefaultMaxHits
	}
	return &Service{
		Index:    index,
		Vehicles: vehicles,
		Cache:    cache,
		MaxHits:  maxHits,
	}
}

// Keyword runs Flow 1: ranked ids from the index, each resolved against the
// vehicles collection concurrently. Results come back in the index's
// relevance order; a hit that fails to resolve is logged and dropped without
// failing the rest. Index outages degrade to an empty result.
func (s *Service) Keyword(ctx context.Context, keyword string) []models.VehicleSummary {
	if strings.TrimSpace(keyword) == "" {
		return []models.VehicleSummary{}
	}

	ids, err := s.Index.SearchIDs(ctx, keyword, s.MaxHits)
	if err != nil {
		zap.S().Errorw("search index query failed", "keyword", keyword, "error", err)
		return []models.VehicleSummary{}
	}
	if len(ids) == 0 {
		return []models.VehicleSummary{}
	}

	// each hit resolves into its rank slot so relevance order survives the
	// concurrent gather
	resolved := make([]*models.VehicleSummary, len(ids))
	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(rank int, id string) {
			defer wg.Done()
			vehicle, err := s.Vehicles.FindOne(ctx, bson.M{"_id": id})
			if err != nil {
				zap.S().Warnw("skipping unresolved search hit", "id", id, "error", err)
				return
			}
			summary := vehicle.Summary()
			resolved[rank] = &summary
		}(i, id)
	}
	wg.Wait()

	out := make([]models.VehicleSummary, 0, len(ids))
	for _, r := range resolved {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

// AllVehicles runs Flow 2's load step: serve the cached collection while
// fresh, otherwise fetch everything and repopulate the cache. Fetch failures
// degrade to an empty result with a log line.
func (s *Service) AllVehicles(ctx context.Context) []models.VehicleSummary {
	if cached, ok := s.Cache.Get(AllVehiclesKey); ok {
		return cached
	}

	vehicles, err := s.Vehicles.Find(ctx, bson.D{})
	if err != nil {
		zap.S().Errorw("failed to load vehicle collection", "error", err)
		return []models.VehicleSummary{}
	}

	summaries := make([]models.VehicleSummary, 0, len(vehicles))
	for _, v := range vehicles {
		summaries = append(summaries, v.Summary())
	}

	s.Cache.Put(AllVehiclesKey, summaries)
	return summaries
}
