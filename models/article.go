package models

import "time"

// Article holds the structure for the articles collection in mongo
type Article struct {
	ID      string         `json:"_id" bson:"_id"`
	Details ArticleDetails `json:"article" bson:"article"`
	Version int32          `json:"__v" bson:"__v"`
}

// ArticleDetails holds the structure for the inner article structure as
// defined in the articles collection in mongo
type ArticleDetails struct {
	Title     string    `json:"title" bson:"title"`
	Slug      string    `json:"slug" bson:"slug"`
	Body      string    `json:"body" bson:"body"`
	Author    string    `json:"author" bson:"author"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}
