package databases

//go generate: mockery --name DealerDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carhive/carhive-api/models"
)

const dealerName = "dealers"

// DealerDatabase contains the methods to use with the dealer database
type DealerDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Dealer, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Dealer, error)
	InsertOne(ctx context.Context, dealer models.Dealer) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type dealerDatabase struct {
	db DatabaseHelper
}

// NewDealerDatabase initializes a new instance of dealer database with the provided db connection
func NewDealerDatabase(db DatabaseHelper) DealerDatabase {
	return &dealerDatabase{
		db: db,
	}
}

func (d *dealerDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Dealer, error) {
	dealer := &models.Dealer{}
	err := d.db.Collection(dealerName).FindOne(ctx, filter).Decode(&dealer)
	if err != nil {
		return nil, err
	}
	return dealer, nil
}

func (d *dealerDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Dealer, error) {
	var dealers []models.Dealer
	err := d.db.Collection(dealerName).Find(ctx, filter, opts...).Decode(&dealers)
	if err != nil {
		return nil, err
	}
	return dealers, nil
}

func (d *dealerDatabase) InsertOne(ctx context.Context, dealer models.Dealer) (interface{}, error) {
	return d.db.Collection(dealerName).InsertOne(ctx, dealer)
}

func (d *dealerDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return d.db.Collection(dealerName).UpdateOne(ctx, filter, update, opts...)
}
