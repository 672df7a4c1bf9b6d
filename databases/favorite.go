package databases

//go generate: mockery --name FavoriteDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carhive/carhive-api/models"
)

const favoriteName = "favorites"

// FavoriteDatabase contains the methods to use with the favorite database
type FavoriteDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Favorite, error)
	InsertOne(ctx context.Context, favorite models.Favorite) (interface{}, error)
	DeleteOne(ctx context.Context, filter interface{}) error
	CountDocuments(ctx context.Context, filter interface{}) (int64, error)
}

type favoriteDatabase struct {
	db DatabaseHelper
}

// NewFavoriteDatabase initializes a new instance of favorite database with the provided db connection
func NewFavoriteDatabase(db DatabaseHelper) FavoriteDatabase {
	return &favoriteDatabase{
		db: db,
	}
}

func (f *favoriteDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Favorite, error) {
	var favorites []models.Favorite
	err := f.db.Collection(favoriteName).Find(ctx, filter, opts...).Decode(&favorites)
	if err != nil {
		return nil, err
	}
	return favorites, nil
}

func (f *favoriteDatabase) InsertOne(ctx context.Context, favorite models.Favorite) (interface{}, error) {
	return f.db.Collection(favoriteName).InsertOne(ctx, favorite)
}

func (f *favoriteDatabase) DeleteOne(ctx context.Context, filter interface{}) error {
	return f.db.Collection(favoriteName).DeleteOne(ctx, filter)
}

func (f *favoriteDatabase) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return f.db.Collection(favoriteName).CountDocuments(ctx, filter)
}
