package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"tenant-api/internal/middleware"
	"tenant-api/internal/model"
	"tenant-api/pkg/database"
	"tenant-api/pkg/logger"
	"tenant-api/pkg/tenantutil"
	"tenant-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProductRequest defines the structure for product creation requests. A
// tenant id in the payload is never read; the ambient tenant context wins.
type ProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Stock       int     `json:"stock"`
}

// ProductUpdateRequest carries a partial merge; nil fields are left unchanged
type ProductUpdateRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

// ListProducts retrieves all products under the ambient tenant
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("list")

	tenantID, _ := middleware.GetTenantID(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if result := database.GetDB().Where("tenant_id = ?", tenantID).Find(&products); result.Error != nil {
		log.Error("Failed to list products", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct retrieves a single product by ID, scoped to the ambient tenant.
// A wrong id and an id under another tenant are indistinguishable.
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("get")

	tenantID, _ := middleware.GetTenantID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid product ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var product model.Product
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, tenantID).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Product not found", zap.Uint64("id", id), zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Error("Failed to get product", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, product)
}

// CreateProduct creates a product under the ambient tenant
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("create")

	tenantID, _ := middleware.GetTenantID(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Price <= 0 {
		log.Warn("Incomplete product data", zap.String("name", req.Name), zap.Float64("price", req.Price))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and a positive price are required"})
	}

	// Enforce the tenant's configured product limit
	var count int64
	if err := database.GetDB().Model(&model.Product{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		log.Error("Failed to count tenant products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	allowed, err := tenantutil.CheckLimit(database.GetDB(), tenantID, tenantutil.ResourceProducts, count)
	if err != nil {
		log.Error("Failed to check tenant limits", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if !allowed {
		log.Warn("Product limit reached", zap.Uint("tenant_id", tenantID), zap.Int64("count", count))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product limit reached for tenant"})
	}

	product := model.Product{
		TenantID:    tenantID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Stock:       req.Stock,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&product); result.Error != nil {
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("Product created",
		zap.Uint("id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("tenant_id", product.TenantID))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies a partial merge to a product under the ambient tenant
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("update")

	tenantID, _ := middleware.GetTenantID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid product ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req ProductUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid request data", zap.Uint64("id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var product model.Product
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, tenantID).First(&product)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Product not found for update", zap.Uint64("id", id), zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Error("Failed to load product for update", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&product); result.Error != nil {
		log.Error("Failed to update product", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("Product updated",
		zap.Uint("id", product.ID),
		zap.String("name", product.Name),
		zap.Uint("tenant_id", product.TenantID))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct deletes a product under the ambient tenant
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordProductOperation("delete")

	tenantID, _ := middleware.GetTenantID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid product ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	result := database.GetDB().Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&model.Product{})
	if result.Error != nil {
		log.Error("Failed to delete product", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	if result.RowsAffected == 0 {
		log.Warn("Product not found for deletion", zap.Uint64("id", id), zap.Uint("tenant_id", tenantID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	log.Info("Product deleted", zap.Uint64("id", id), zap.Uint("tenant_id", tenantID))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted successfully"})
}
