package middleware

import (
	"net/http"
	"strings"
	"time"

	"tenant-api/internal/model"
	"tenant-api/pkg/database"
	"tenant-api/pkg/jwtutil"
	"tenant-api/pkg/logger"
	"tenant-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the JWT token from the Authorization header and
// re-fetches the user under the ambient tenant context. The lookup filters by
// the resolved tenant, not the token's tenant claim, so a token issued under
// one tenant finds no user when presented against another tenant's context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tenantID, ok := GetTenantID(c)
		if !ok {
			log.Error("Tenant context missing before authentication")
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant id is required"})
		}

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Validate the token; malformed, expired and bad-signature failures
		// all surface the same response
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Cross-check: the token's user must still exist under the resolved
		// tenant context
		defer prometheus.TrackDBOperation("query")(time.Now())
		var user model.User
		result := database.GetDB().Where("id = ? AND tenant_id = ?", claims.UserID, tenantID).First(&user)
		if result.Error != nil {
			log.Warn("Token user not found under tenant",
				zap.Uint("user_id", claims.UserID),
				zap.Uint("tenant_id", tenantID))
			prometheus.RecordAuthError("user_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		// Attach the authenticated identity for downstream handlers
		c.Set("user", user)
		return next(c)
	}
}

// RequireAdmin rejects requests whose authenticated identity does not carry
// the admin role. Stateless; AuthMiddleware must have run first.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		user, ok := GetUser(c)
		if !ok || user.Role != model.RoleAdmin {
			log.Warn("Admin access denied", zap.String("role", user.Role))
			prometheus.RecordAuthError("admin_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied, admin role required"})
		}

		return next(c)
	}
}

// GetUser retrieves the authenticated identity set by AuthMiddleware.
func GetUser(c echo.Context) (model.User, bool) {
	user, ok := c.Get("user").(model.User)
	return user, ok
}
