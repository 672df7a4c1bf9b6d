package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/carhive/carhive-api/models"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func fixtureSummaries() []models.VehicleSummary {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	lat, lng := 51.5074, -0.1278 // London
	farLat, farLng := 55.9533, -3.1883

	return []models.VehicleSummary{
		{
			ID: "v1", Category: models.CategoryCar, Make: "Toyota", Model: "Corolla",
			Year: 2020, Price: 15000, Mileage: 42000, FuelType: "Petrol",
			Transmission: "Manual", BodyType: "Saloon",
			Location:  models.Location{City: "London", Lat: &lat, Lng: &lng},
			CreatedAt: base,
		},
		{
			ID: "v2", Category: models.CategoryCar, Make: "BMW", Model: "3 Series",
			Year: 2023, Price: 32000, Mileage: 8000, FuelType: "Diesel",
			Transmission: "Automatic", BodyType: "Saloon",
			Location:  models.Location{City: "Edinburgh", Lat: &farLat, Lng: &farLng},
			CreatedAt: base.Add(48 * time.Hour),
		},
		{
			ID: "v3", Category: models.CategoryVan, Make: "Ford", Model: "Transit",
			Year: 2018, Price: 12000, Mileage: 90000, FuelType: "Diesel",
			Transmission: "Manual", BodyType: "Panel Van",
			Location:  models.Location{City: "Unknown"},
			CreatedAt: base.Add(24 * time.Hour),
		},
	}
}

func TestApplyFiltersCategoriesAndWithinListOr(t *testing.T) {
	items := fixtureSummaries()

	// category AND make
	got := ApplyFilters(items, Filters{Category: models.CategoryCar, Makes: []string{"toyota"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)

	// two makes OR each other
	got = ApplyFilters(items, Filters{Makes: []string{"Toyota", "BMW"}})
	assert.Len(t, got, 2)

	// make matches on substring, case-insensitively
	got = ApplyFilters(items, Filters{Models: []string{"trans"}})
	assert.Len(t, got, 1)
	assert.Equal(t, "v3", got[0].ID)

	// fuel type is an exact match, not substring
	got = ApplyFilters(items, Filters{FuelTypes: []string{"Dies"}})
	assert.Empty(t, got)
}

func TestApplyFiltersInclusiveBounds(t *testing.T) {
	items := fixtureSummaries()

	got := ApplyFilters(items, Filters{MinPrice: floatPtr(15000), MaxPrice: floatPtr(32000)})
	assert.Len(t, got, 2)

	got = ApplyFilters(items, Filters{MinYear: intPtr(2020), MaxYear: intPtr(2020)})
	assert.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)

	got = ApplyFilters(items, Filters{MaxMileage: intPtr(8000)})
	assert.Len(t, got, 1)
	assert.Equal(t, "v2", got[0].ID)
}

func TestApplyFiltersLocationFailsClosed(t *testing.T) {
	items := fixtureSummaries()

	// 50km around London: v2 is in Edinburgh, v3 has no coordinates
	got := ApplyFilters(items, Filters{Near: &RadiusFilter{Lat: 51.5074, Lng: -0.1278, RadiusKm: 50}})
	assert.Len(t, got, 1)
	assert.Equal(t, "v1", got[0].ID)

	// a huge radius still excludes the listing without coordinates
	got = ApplyFilters(items, Filters{Near: &RadiusFilter{Lat: 51.5074, Lng: -0.1278, RadiusKm: 10000}})
	assert.Len(t, got, 2)
}

func TestApplyFiltersIsIdempotentAndPure(t *testing.T) {
	items := fixtureSummaries()
	f := Filters{Category: models.CategoryCar}

	once := ApplyFilters(items, f)
	twice := ApplyFilters(once, f)
	assert.Equal(t, once, twice)

	// the input slice is untouched
	assert.Len(t, items, 3)
	assert.Equal(t, "v1", items[0].ID)
}

func TestApplyFiltersEmptyFiltersKeepsEverything(t *testing.T) {
	items := fixtureSummaries()
	got := ApplyFilters(items, Filters{})
	assert.Equal(t, items, got)
}

func TestSortSummaries(t *testing.T) {
	items := fixtureSummaries()

	byPrice := SortSummaries(items, SortByPrice, false)
	assert.Equal(t, []string{"v3", "v1", "v2"}, idsOf(byPrice))

	byPriceDesc := SortSummaries(items, SortByPrice, true)
	assert.Equal(t, []string{"v2", "v1", "v3"}, idsOf(byPriceDesc))

	byYear := SortSummaries(items, SortByYear, false)
	assert.Equal(t, []string{"v3", "v1", "v2"}, idsOf(byYear))

	// unknown field sorts newest first regardless of direction
	fallback := SortSummaries(items, "bogus", false)
	assert.Equal(t, []string{"v2", "v3", "v1"}, idsOf(fallback))

	// sorting returns a copy
	assert.Equal(t, "v1", items[0].ID)
}

func TestPaginate(t *testing.T) {
	items := fixtureSummaries()

	page := Paginate(items, 1, 2)
	assert.Equal(t, []string{"v1", "v2"}, idsOf(page.Items))
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.False(t, page.HasPreviousPage)

	page = Paginate(items, 2, 2)
	assert.Equal(t, []string{"v3"}, idsOf(page.Items))
	assert.False(t, page.HasNextPage)
	assert.True(t, page.HasPreviousPage)

	// out-of-range pages yield an empty page, not an error
	page = Paginate(items, 9, 2)
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalItems)
	assert.False(t, page.HasNextPage)

	// zero and negative inputs normalize
	page = Paginate(items, 0, 0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.PageSize)
	assert.Equal(t, []string{"v1"}, idsOf(page.Items))

	page = Paginate([]models.VehicleSummary{}, 1, 20)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasPreviousPage)
}

func idsOf(items []models.VehicleSummary) []string {
	out := make([]string, 0, len(items))
	for _, v := range items {
		out = append(out, v.ID)
	}
	return out
}
