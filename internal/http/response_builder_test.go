package http

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/1").
		Data(map[string]int{"n": 1}).
		Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/transactions/1", rec.Header().Get("Location"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"n":1}`, rec.Body.String())
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Empty(t, rec.Header().Get("Content-Type"))
}

func TestJSONResponseBuilder_EncodeFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Data(math.Inf(1)).Write(rec)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		builder *JSONResponseBuilder
		status  int
	}{
		{BadRequestError("bad"), http.StatusBadRequest},
		{UnprocessableEntityError("bad"), http.StatusUnprocessableEntity},
		{NotFoundError("bad"), http.StatusNotFound},
		{InternalServerError("bad"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		tt.builder.Write(rec)
		assert.Equal(t, tt.status, rec.Code)
		assert.JSONEq(t, `{"error":"bad"}`, rec.Body.String())
	}
}
