package search

import (
	"math"
	"sort"
	"strings"

	"github.com/carhive/carhive-api/models"
)

// Filters is the predicate set for the browse flow. Categories combine with
// AND; values inside a list combine with OR. Nil/empty predicates are
// inactive.
type Filters struct {
	Category      string
	Makes         []string
	Models        []string
	FuelTypes     []string
	Transmissions []string
	BodyTypes     []string
	MinPrice      *float64
	MaxPrice      *float64
	MinYear       *int
	MaxYear       *int
	MinMileage    *int
	MaxMileage    *int
	Near          *RadiusFilter
}

// RadiusFilter keeps vehicles within RadiusKm of the given center. Vehicles
// with no stored coordinates are excluded while this predicate is active.
type RadiusFilter struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// Sort fields understood by SortSummaries.
const (
	SortByPrice   = "price"
	SortByYear    = "year"
	SortByMileage = "mileage"
	SortByNewest  = "created"
)

// ApplyFilters returns the vehicles satisfying every active predicate. Pure:
// the input slice is never modified.
func ApplyFilters(items []models.VehicleSummary, f Filters) []models.VehicleSummary {
	out := make([]models.VehicleSummary, 0, len(items))
	for _, v := range items {
		if matches(v, f) {
			out = append(out, v)
		}
	}
	return out
}

func matches(v models.VehicleSummary, f Filters) bool {
	if f.Category != "" && !strings.EqualFold(v.Category, f.Category) {
		return false
	}
	if len(f.Makes) > 0 && !anyContains(f.Makes, v.Make) {
		return false
	}
	if len(f.Models) > 0 && !anyContains(f.Models, v.Model) {
		return false
	}
	if len(f.FuelTypes) > 0 && !anyEquals(f.FuelTypes, v.FuelType) {
		return false
	}
	if len(f.Transmissions) > 0 && !anyEquals(f.Transmissions, v.Transmission) {
		return false
	}
	if len(f.BodyTypes) > 0 && !anyEquals(f.BodyTypes, v.BodyType) {
		return false
	}
	if f.MinPrice != nil && v.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.Price > *f.MaxPrice {
		return false
	}
	if f.MinYear != nil && v.Year < *f.MinYear {
		return false
	}
	if f.MaxYear != nil && v.Year > *f.MaxYear {
		return false
	}
	if f.MinMileage != nil && v.Mileage < *f.MinMileage {
		return false
	}
	if f.MaxMileage != nil && v.Mileage > *f.MaxMileage {
		return false
	}
	if f.Near != nil {
		// fail-closed: a listing without coordinates never matches a
		// location predicate
		if v.Location.Lat == nil || v.Location.Lng == nil {
			return false
		}
		d := haversineKm(f.Near.Lat, f.Near.Lng, *v.Location.Lat, *v.Location.Lng)
		if d > f.Near.RadiusKm {
			return false
		}
	}
	return true
}

// anyContains reports whether value contains any of the wanted strings,
// case-insensitively (substring match, used for make/model)
func anyContains(wanted []string, value string) bool {
	lower := strings.ToLower(value)
	for _, w := range wanted {
		if w == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// anyEquals reports whether value equals any of the wanted strings,
// case-insensitively (exact match, used for fuel/transmission/body type)
func anyEquals(wanted []string, value string) bool {
	for _, w := range wanted {
		if w == "" {
			continue
		}
		if strings.EqualFold(w, value) {
			return true
		}
	}
	return false
}

// SortSummaries returns a sorted copy of items by the given field. Unknown
// fields sort by newest first regardless of direction.
func SortSummaries(items []models.VehicleSummary, field string, descending bool) []models.VehicleSummary {
	out := copySummaries(items)
	var less func(i, j int) bool
	switch field {
	case SortByPrice:
		less = func(i, j int) bool { return out[i].Price < out[j].Price }
	case SortByYear:
		less = func(i, j int) bool { return out[i].Year < out[j].Year }
	case SortByMileage:
		less = func(i, j int) bool { return out[i].Mileage < out[j].Mileage }
	case SortByNewest:
		less = func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) }
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return out
	}
	if descending {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(out, less)
	return out
}

// Page is one page of browse results plus pagination bookkeeping
type Page struct {
	Items           []models.VehicleSummary `json:"items"`
	Page            int                     `json:"page"`
	PageSize        int                     `json:"pageSize"`
	TotalItems      int                     `json:"totalItems"`
	TotalPages      int                     `json:"totalPages"`
	HasNextPage     bool                    `json:"hasNextPage"`
	HasPreviousPage bool                    `json:"hasPreviousPage"`
}

// Paginate slices items into the given 1-indexed page. Pages beyond the end
// yield an empty items array, not an error.
func Paginate(items []models.VehicleSummary, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:           copySummaries(items[start:end]),
		Page:            page,
		PageSize:        pageSize,
		TotalItems:      total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1 && total > 0,
	}
}

const earthRadiusKm = 6371.0

// haversineKm computes the great-circle distance between two points
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
