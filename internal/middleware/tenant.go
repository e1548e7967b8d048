package middleware

import (
	"net/http"
	"strconv"

	"tenant-api/pkg/logger"
	"tenant-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHeader carries the tenant identifier on every API request
const TenantHeader = "X-Tenant-ID"

// TenantMiddleware resolves the ambient tenant context from the tenant header.
// Requests without the header are rejected before any handler or database
// call runs. The identifier is not checked against the tenants table here;
// whichever handler first needs the tenant record performs that check.
func TenantMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		header := c.Request().Header.Get(TenantHeader)
		if header == "" {
			log.Warn("Missing tenant header")
			prometheus.TenantHeaderMissingCounter.Inc()
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant id is required"})
		}

		tenantID, err := strconv.ParseUint(header, 10, 32)
		if err != nil {
			log.Warn("Invalid tenant header", zap.String("value", header))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tenant id"})
		}

		c.Set("tenant_id", uint(tenantID))
		return next(c)
	}
}

// GetTenantID retrieves the ambient tenant context set by TenantMiddleware.
// Returns 0, false when the middleware has not run.
func GetTenantID(c echo.Context) (uint, bool) {
	tenantID, ok := c.Get("tenant_id").(uint)
	return tenantID, ok
}
