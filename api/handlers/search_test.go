package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/databases/mocks"
	"github.com/carhive/carhive-api/models"
	"github.com/carhive/carhive-api/search"
)

func browseFixtureService() (*search.Service, *mocks.CollectionHelper) {
	dbHelper := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Vehicle)
		*arg = []models.Vehicle{
			{ID: "v1", Details: models.VehicleDetails{Category: models.CategoryCar, Make: "Toyota", Price: 15000}},
			{ID: "v2", Details: models.VehicleDetails{Category: models.CategoryCar, Make: "BMW", Price: 32000}},
			{ID: "v3", Details: models.VehicleDetails{Category: models.CategoryVan, Make: "Ford", Price: 12000}},
		}
	})
	coll.On("Find", mock.Anything, bson.D{}).Return(cursor)
	dbHelper.On("Collection", "vehicles").Return(coll)

	svc := search.NewService(nil, databases.NewVehicleDatabase(dbHelper), search.NewResultCache(search.DefaultCacheTTL, nil), 0)
	return svc, coll
}

func TestBrowseHandlerFiltersSortsAndPaginates(t *testing.T) {
	svc, _ := browseFixtureService()
	s := Search{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/browse?category=Car&sort=price&order=desc&page=1&pageSize=1", nil)
	rr := httptest.NewRecorder()

	s.BrowseHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var page search.Page
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalItems, "the van is filtered out")
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasNextPage)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, "v2", page.Items[0].ID, "descending price puts the BMW first")
}

func TestBrowseHandlerOutOfRangePageIsEmpty(t *testing.T) {
	svc, _ := browseFixtureService()
	s := Search{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/browse?page=40", nil)
	rr := httptest.NewRecorder()

	s.BrowseHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var page search.Page
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalItems)
}

func TestBrowseHandlerServesSecondRequestFromCache(t *testing.T) {
	svc, coll := browseFixtureService()
	s := Search{Service: svc}

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/browse", nil)
		rr := httptest.NewRecorder()
		s.BrowseHandler(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	coll.AssertNumberOfCalls(t, "Find", 1)
}

func TestKeywordSearchHandlerBlankQuery(t *testing.T) {
	svc, coll := browseFixtureService()
	s := Search{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/search?q=", nil)
	rr := httptest.NewRecorder()

	s.KeywordSearchHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
	coll.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}
