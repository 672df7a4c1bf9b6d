package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carhive/carhive-api/config"
	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/models"
)

// Article exported for testing purposes
type Article struct {
	DB databases.ArticleDatabase
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ArticleHandler returns all articles, newest first
func (h Article) ArticleHandler(w http.ResponseWriter, r *http.Request) {
	opts := options.Find().SetSort(bson.M{"article.createdAt": -1})
	articles, err := h.DB.Find(r.Context(), bson.D{}, opts)
	if err != nil {
		config.ErrorStatus("failed to get articles", http.StatusNotFound, w, err)
		return
	}
	if articles == nil {
		articles = []models.Article{}
	}

	b, err := json.Marshal(articles)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ArticleBySlugHandler returns a single article by its slug
func (h Article) ArticleBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	article, err := h.DB.FindOne(r.Context(), bson.M{"article.slug": slug})
	if err != nil {
		config.ErrorStatus("failed to get article by slug", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(article)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateArticleHandler creates a new article, deriving the slug from the
// title when the request omits one
func (h Article) CreateArticleHandler(w http.ResponseWriter, r *http.Request) {
	var details models.ArticleDetails
	if err := json.NewDecoder(r.Body).Decode(&details); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if details.Title == "" {
		config.ErrorStatus("missing title", http.StatusBadRequest, w, fmt.Errorf("title is required"))
		return
	}
	if details.Slug == "" {
		details.Slug = slugify(details.Title)
	}
	now := time.Now()
	details.CreatedAt = now
	details.UpdatedAt = now

	article := models.Article{
		ID:      uuid.New().String(),
		Details: details,
	}
	if _, err := h.DB.InsertOne(r.Context(), article); err != nil {
		config.ErrorStatus("failed to create article", http.StatusInternalServerError, w, err)
		return
	}

	b, _ := json.Marshal(article)
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

func slugify(title string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
