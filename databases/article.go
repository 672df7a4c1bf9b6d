package databases

//go generate: mockery --name ArticleDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carhive/carhive-api/models"
)

const articleName = "articles"

// ArticleDatabase contains the methods to use with the article database
type ArticleDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Article, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Article, error)
	InsertOne(ctx context.Context, article models.Article) (interface{}, error)
}

type articleDatabase struct {
	db DatabaseHelper
}

// NewArticleDatabase initializes a new instance of article database with the provided db connection
func NewArticleDatabase(db DatabaseHelper) ArticleDatabase {
	return &articleDatabase{
		db: db,
	}
}

func (a *articleDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Article, error) {
	article := &models.Article{}
	err := a.db.Collection(articleName).FindOne(ctx, filter).Decode(&article)
	if err != nil {
		return nil, err
	}
	return article, nil
}

func (a *articleDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Article, error) {
	var articles []models.Article
	err := a.db.Collection(articleName).Find(ctx, filter, opts...).Decode(&articles)
	if err != nil {
		return nil, err
	}
	return articles, nil
}

func (a *articleDatabase) InsertOne(ctx context.Context, article models.Article) (interface{}, error) {
	return a.db.Collection(articleName).InsertOne(ctx, article)
}
