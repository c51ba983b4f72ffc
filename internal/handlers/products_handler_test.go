package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"products-import-service/internal/models"
)

func setupLookupRouter(store *MockProductStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(bytes.NewBuffer(nil))

	handler := NewProductsHandler(store, logrus.NewEntry(logger))
	router := gin.New()
	router.GET("/api/v1/products/lookup", handler.Lookup)
	router.GET("/health", HealthCheck)
	return router
}

func TestLookupBySKU(t *testing.T) {
	store := new(MockProductStore)
	store.On("FindBySKU", mock.Anything, "ELE-001").Return(&models.Product{SKU: "ELE-001", Name: "Mouse"}, nil)
	router := setupLookupRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup?sku=ELE-001", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestLookupNotFound(t *testing.T) {
	store := new(MockProductStore)
	store.On("FindByBarcode", mock.Anything, "789000").Return(nil, nil)
	router := setupLookupRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup?barcode=789000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestLookupRequiresAKey(t *testing.T) {
	router := setupLookupRouter(new(MockProductStore))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/lookup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "QUERY_REQUIRED", resp.Error.Code)
}

func TestHealthCheck(t *testing.T) {
	router := setupLookupRouter(new(MockProductStore))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
