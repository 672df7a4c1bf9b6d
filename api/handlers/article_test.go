package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/carhive/carhive-api/databases"
	"github.com/carhive/carhive-api/databases/mocks"
	"github.com/carhive/carhive-api/models"
)

func TestCreateArticleHandlerDerivesSlug(t *testing.T) {
	dbHelper := &mocks.DatabaseHelper{}
	coll := &mocks.CollectionHelper{}
	coll.On("InsertOne", mock.Anything, mock.Anything).Return("new-id", nil)
	dbHelper.On("Collection", "articles").Return(coll)

	h := Article{DB: databases.NewArticleDatabase(dbHelper)}

	body, _ := json.Marshal(models.ArticleDetails{Title: "2026 Toyota Corolla: First Drive!", Author: "Staff"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles", bytes.NewReader(body))
	rr := httptest.NewRecorder()

	h.CreateArticleHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	var created models.Article
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "2026-toyota-corolla-first-drive", created.Details.Slug)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.Details.CreatedAt.IsZero())
}

func TestCreateArticleHandlerRequiresTitle(t *testing.T) {
	h := Article{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/articles", bytes.NewReader([]byte(`{"article": null}`)))
	rr := httptest.NewRecorder()

	h.CreateArticleHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", slugify("Hello, World"))
	assert.Equal(t, "a-b-c", slugify("  a  b  c  "))
	assert.Equal(t, "ev-charging-101", slugify("EV Charging 101!"))
}
