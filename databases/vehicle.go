package databases

//go generate: mockery --name VehicleDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carhive/carhive-api/models"
)

const vehicleName = "vehicles"

// VehicleDatabase contains the methods to use with the vehicle database
type VehicleDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Vehicle, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vehicle, error)
	InsertOne(ctx context.Context, vehicle models.Vehicle) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}) error
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type vehicleDatabase struct {
	db             DatabaseHelper
	collectionName string
}

// NewVehicleDatabase initializes a new instance of vehicle database with the provided db connection
func NewVehicleDatabase(db DatabaseHelper) VehicleDatabase {
	return &vehicleDatabase{
		db:             db,
		collectionName: vehicleName,
	}
}

// NewInactiveVehicleDatabase returns a vehicle database bound to the
// inactiveVehicles collection, which holds listings whose plan backing has
// expired. Active and retired listings are segregated by collection, not by
// a status flag alone.
func NewInactiveVehicleDatabase(db DatabaseHelper) VehicleDatabase {
	return &vehicleDatabase{
		db:             db,
		collectionName: inactiveVehicleName,
	}
}

const inactiveVehicleName = "inactiveVehicles"

func (c *vehicleDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Vehicle, error) {
	vehicle := &models.Vehicle{}
	err := c.db.Collection(c.collectionName).FindOne(ctx, filter).Decode(&vehicle)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (c *vehicleDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := c.db.Collection(c.collectionName).Find(ctx, filter, opts...).Decode(&vehicles)
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (c *vehicleDatabase) InsertOne(ctx context.Context, vehicle models.Vehicle) (interface{}, error) {
	return c.db.Collection(c.collectionName).InsertOne(ctx, vehicle)
}

func (c *vehicleDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(c.collectionName).UpdateOne(ctx, filter, update, opts...)
}

func (c *vehicleDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return c.db.Collection(c.collectionName).UpdateMany(ctx, filter, update, opts...)
}

func (c *vehicleDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return c.db.Collection(c.collectionName).DeleteOne(ctx, filter)
}

func (c *vehicleDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(c.collectionName).CountDocuments(ctx, filter)
}
