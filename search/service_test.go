package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/databases/mocks"
	"github.com/carhive/carhive-api/models"
)

type stubIndex struct {
	ids   []string
	err   error
	calls int
}

func (s *stubIndex) SearchIDs(ctx context.Context, keyword string, maxHits int) ([]string, error) {
	s.calls++
	return s.ids, s.err
}

func decodeVehicle(id string) *mocks.SingleResultHelper {
	sr := &mocks.SingleResultHelper{}
	sr.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Vehicle)
		(*arg).ID = id
		(*arg).Details.Make = "Make-" + id
	})
	return sr
}

func TestKeywordEmptyQuerySkipsTheIndex(t *testing.T) {
	index := &stubIndex{}
	svc := NewService(index, nil, NewResultCache(DefaultCacheTTL, nil), 0)

	got := svc.Keyword(context.Background(), "   ")

	assert.Equal(t, []models.VehicleSummary{}, got)
	assert.Zero(t, index.calls, "blank queries must not reach the index")
}

func TestKeywordIndexErrorDegradesToEmpty(t *testing.T) {
	index := &stubIndex{err: errors.New("index unavailable")}
	svc := NewService(index, nil, NewResultCache(DefaultCacheTTL, nil), 0)

	got := svc.Keyword(context.Background(), "bmw")

	assert.Equal(t, []models.VehicleSummary{}, got)
	assert.Equal(t, 1, index.calls)
}

func TestKeywordPreservesRelevanceOrderAndSkipsFailures(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	srMiss := &mocks.SingleResultHelper{}
	srMiss.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))

	coll.On("FindOne", mock.Anything, bson.M{"_id": "v1"}).Return(decodeVehicle("v1"))
	coll.On("FindOne", mock.Anything, bson.M{"_id": "v2"}).Return(srMiss)
	coll.On("FindOne", mock.Anything, bson.M{"_id": "v3"}).Return(decodeVehicle("v3"))
	dbHelper.On("Collection", "vehicles").Return(coll)

	index := &stubIndex{ids: []string{"v1", "v2", "v3"}}
	svc := NewService(index, databases.NewVehicleDatabase(dbHelper), NewResultCache(DefaultCacheTTL, nil), 0)

	got := svc.Keyword(context.Background(), "corolla")

	// v2 fails to resolve; v1 and v3 come back in the index's order
	assert.Equal(t, []string{"v1", "v3"}, idsOf(got))
}

func TestAllVehiclesPopulatesAndServesCache(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Vehicle)
		*arg = []models.Vehicle{
			{ID: "v1", Details: models.VehicleDetails{Make: "Toyota"}},
			{ID: "v2", Details: models.VehicleDetails{Make: "BMW"}},
		}
	})
	coll.On("Find", mock.Anything, bson.D{}).Return(cursor)
	dbHelper.On("Collection", "vehicles").Return(coll)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewResultCache(5*time.Minute, func() time.Time { return now })
	svc := NewService(&stubIndex{}, databases.NewVehicleDatabase(dbHelper), cache, 0)

	first := svc.AllVehicles(context.Background())
	assert.Equal(t, []string{"v1", "v2"}, idsOf(first))

	// second call within the TTL is served from cache, no second fetch
	second := svc.AllVehicles(context.Background())
	assert.Equal(t, first, second)
	coll.AssertNumberOfCalls(t, "Find", 1)

	// past the TTL the collection is fetched again
	now = now.Add(6 * time.Minute)
	third := svc.AllVehicles(context.Background())
	assert.Equal(t, first, third)
	coll.AssertNumberOfCalls(t, "Find", 2)
}

func TestAllVehiclesFetchErrorDegradesToEmpty(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}

	cursor := &mocks.CursorHelper{}
	cursor.On("Decode", mock.Anything).Return(errors.New("mocked-error"))
	coll.On("Find", mock.Anything, bson.D{}).Return(cursor)
	dbHelper.On("Collection", "vehicles").Return(coll)

	svc := NewService(&stubIndex{}, databases.NewVehicleDatabase(dbHelper), NewResultCache(DefaultCacheTTL, nil), 0)

	got := svc.AllVehicles(context.Background())
	assert.Equal(t, []models.VehicleSummary{}, got)
}
