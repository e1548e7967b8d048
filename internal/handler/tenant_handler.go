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
	"tenant-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TenantRequest defines the structure for tenant creation requests
type TenantRequest struct {
	Name          string              `json:"name"`
	Domain        string              `json:"domain"`
	Configuration *model.TenantConfig `json:"configuration,omitempty"`
	Status        string              `json:"status,omitempty"`
}

// TenantUpdateRequest carries a partial merge; nil fields are left unchanged
type TenantUpdateRequest struct {
	Name          *string             `json:"name,omitempty"`
	Domain        *string             `json:"domain,omitempty"`
	Configuration *model.TenantConfig `json:"configuration,omitempty"`
	Status        *string             `json:"status,omitempty"`
}

// ListTenants retrieves all tenants. Administrative and cross-tenant; no
// tenant scoping applies.
func ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenants []model.Tenant
	if result := database.GetDB().Find(&tenants); result.Error != nil {
		log.Error("Failed to list tenants", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, tenants)
}

// GetTenant retrieves a tenant by ID, unscoped
func GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid tenant ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Tenant not found", zap.Uint64("id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to get tenant", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, tenant)
}

// CreateTenant handles tenant creation. Name and domain are globally unique;
// a collision on either reports a validation error rather than a server error.
func CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Name == "" || req.Domain == "" {
		log.Warn("Incomplete tenant data",
			zap.String("name", req.Name),
			zap.String("domain", req.Domain))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and domain are required"})
	}

	tenant := model.Tenant{
		Name:          req.Name,
		Domain:        req.Domain,
		Configuration: model.DefaultTenantConfig(),
		Status:        model.StatusActive,
	}
	if req.Configuration != nil {
		tenant.Configuration = *req.Configuration
	}
	if req.Status != "" {
		tenant.Status = req.Status
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&tenant); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Tenant name or domain already exists",
				zap.String("name", req.Name),
				zap.String("domain", req.Domain))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant with that name or domain already exists"})
		}
		log.Error("Failed to create tenant", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("Tenant created",
		zap.Uint("id", tenant.ID),
		zap.String("name", tenant.Name),
		zap.String("domain", tenant.Domain))
	return c.JSON(http.StatusCreated, tenant)
}

// UpdateTenant applies a partial merge to an existing tenant
func UpdateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("update")

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		log.Warn("Invalid tenant ID", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
	}

	var req TenantUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse tenant update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Tenant not found for update", zap.Uint64("id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to load tenant for update", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.Domain != nil {
		tenant.Domain = *req.Domain
	}
	if req.Configuration != nil {
		tenant.Configuration = *req.Configuration
	}
	if req.Status != nil {
		tenant.Status = *req.Status
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if result := database.GetDB().Save(&tenant); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("Tenant name or domain already exists", zap.Uint64("id", id))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant with that name or domain already exists"})
		}
		log.Error("Failed to update tenant", zap.Uint64("id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("Tenant updated", zap.Uint("id", tenant.ID), zap.String("name", tenant.Name))
	return c.JSON(http.StatusOK, tenant)
}

// GetTenantConfig resolves the ambient tenant and returns only its name and
// configuration block. The one tenant-scoped tenant read; no auth required.
func GetTenantConfig(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("config")

	tenantID, ok := middleware.GetTenantID(c)
	if !ok {
		log.Error("Tenant context missing")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant id is required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var tenant model.Tenant
	if result := database.GetDB().First(&tenant, tenantID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("Tenant not found", zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Failed to load tenant configuration", zap.Uint("tenant_id", tenantID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"tenant_id":     tenant.ID,
		"name":          tenant.Name,
		"configuration": tenant.Configuration,
	})
}
