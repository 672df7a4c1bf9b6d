package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/models"
	"github.com/carhive/carhive-api/search"
)

// Search exported for testing purposes
type Search struct {
	Service *search.Service
}

// KeywordSearchHandler runs a relevance-ranked keyword search against the
// hosted index. Failures degrade to an empty result, never an error page.
func (s Search) KeywordSearchHandler(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")

	zap.S().Debugf("keyword: %v", keyword)

	results := s.Service.Keyword(r.Context(), keyword)
	if results == nil {
		results = []models.VehicleSummary{}
	}

	b, err := json.Marshal(results)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// BrowseHandler loads the (cached) collection and applies the requested
// filters, sort, and pagination in memory
func (s Search) BrowseHandler(w http.ResponseWriter, r *http.Request) {
	filters := parseFilters(r)
	sortField := r.URL.Query().Get("sort")
	descending := strings.EqualFold(r.URL.Query().Get("order"), "desc")

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if err != nil || pageSize < 1 {
		pageSize = 20
	}

	all := s.Service.AllVehicles(r.Context())
	filtered := search.ApplyFilters(all, filters)
	sorted := search.SortSummaries(filtered, sortField, descending)
	result := search.Paginate(sorted, page, pageSize)

	b, err := json.Marshal(result)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func parseFilters(r *http.Request) search.Filters {
	q := r.URL.Query()

	f := search.Filters{
		Category:      q.Get("category"),
		Makes:         splitList(q.Get("make")),
		Models:        splitList(q.Get("model")),
		FuelTypes:     splitList(q.Get("fuel")),
		Transmissions: splitList(q.Get("transmission")),
		BodyTypes:     splitList(q.Get("body")),
		MinPrice:      parseFloat(q.Get("minPrice")),
		MaxPrice:      parseFloat(q.Get("maxPrice")),
		MinYear:       parseInt(q.Get("minYear")),
		MaxYear:       parseInt(q.Get("maxYear")),
		MinMileage:    parseInt(q.Get("minMileage")),
		MaxMileage:    parseInt(q.Get("maxMileage")),
	}

	lat := parseFloat(q.Get("lat"))
	lng := parseFloat(q.Get("lng"))
	radius := parseFloat(q.Get("radius"))
	if lat != nil && lng != nil && radius != nil && *radius > 0 {
		f.Near = &search.RadiusFilter{Lat: *lat, Lng: *lng, RadiusKm: *radius}
	}

	return f
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		zap.S().Warnf("ignoring unparsable numeric filter: %v", raw)
		return nil
	}
	return &v
}

func parseInt(raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		zap.S().Warnf("ignoring unparsable numeric filter: %v", raw)
		return nil
	}
	return &v
}
