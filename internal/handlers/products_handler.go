package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"products-import-service/internal/models"
	"products-import-service/internal/repository"
)

// ProductsHandler serves catalog lookups used to verify import results.
type ProductsHandler struct {
	store  repository.ProductStore
	logger *logrus.Entry
}

func NewProductsHandler(store repository.ProductStore, logger *logrus.Entry) *ProductsHandler {
	return &ProductsHandler{store: store, logger: logger}
}

// Lookup finds a single product by one identifying key
// @Summary Look up a product
// @Description Finds a product by sku, barcode or exact name. Keys are checked in that order; the first one present is used.
// @Tags products
// @Produce json
// @Param sku query string false "Product SKU"
// @Param barcode query string false "Product barcode, punctuation ignored"
// @Param name query string false "Exact product name, case-insensitive"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /products/lookup [get]
func (h *ProductsHandler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		product *models.Product
		err     error
	)
	switch {
	case c.Query("sku") != "":
		product, err = h.store.FindBySKU(ctx, c.Query("sku"))
	case c.Query("barcode") != "":
		product, err = h.store.FindByBarcode(ctx, c.Query("barcode"))
	case c.Query("name") != "":
		product, err = h.store.FindByName(ctx, c.Query("name"))
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "QUERY_REQUIRED", Message: "Pass one of sku, barcode or name"},
		})
		return
	}

	if err != nil {
		h.logger.WithError(err).Error("Product lookup failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "STORE_ERROR", Message: "Failed to look up product"},
		})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "NOT_FOUND", Message: "Product not found"},
		})
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: product})
}

// HealthCheck reports service liveness
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "products-import-service",
	})
}
