package config_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carhive/carhive-api/config"
)

func TestErrorStatus(t *testing.T) {
	rr := httptest.NewRecorder()

	config.ErrorStatus("failed to get vehicle by ID", http.StatusNotFound, rr, errors.New("mongo: no documents in result"))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, `{"response": "failed to get vehicle by ID, mongo: no documents in result"}`, rr.Body.String())
}
