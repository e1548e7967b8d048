package handler

import (
	"errors"
	"net/http"
	"time"

	"tenant-api/internal/middleware"
	"tenant-api/internal/model"
	"tenant-api/pkg/database"
	"tenant-api/pkg/jwtutil"
	"tenant-api/pkg/logger"
	"tenant-api/pkg/tenantutil"
	"tenant-api/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// userProjection is the redacted user shape returned by login and register
type userProjection struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func projectUser(u *model.User) userProjection {
	return userProjection{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
	}
}

// Login authenticates a user under the ambient tenant and issues a token.
// A missing user and a wrong password produce the same response.
func Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("login")

	tenantID, _ := middleware.GetTenantID(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse login request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().
		Where("email = ? AND tenant_id = ? AND status = ?", req.Email, tenantID, model.StatusActive).
		First(&user)
	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Error("Failed to look up user", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
		log.Warn("Login for unknown user",
			zap.String("email", req.Email),
			zap.Uint("tenant_id", tenantID))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email), zap.Uint("tenant_id", tenantID))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := jwtutil.GenerateToken(user.ID, user.TenantID)
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	prometheus.IncreaseActiveTokens()

	log.Info("User logged in",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", user.TenantID))
	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  projectUser(&user),
	})
}

// Register creates a user under the ambient tenant. Any tenant id in the
// payload is ignored. No token is issued; the caller logs in afterwards.
func Register(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("register")

	tenantID, _ := middleware.GetTenantID(c)

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Role     string `json:"role,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse registration request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		log.Warn("Incomplete registration data", zap.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and name are required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var existing model.User
	result := database.GetDB().Where("email = ? AND tenant_id = ?", req.Email, tenantID).First(&existing)
	if result.Error == nil {
		log.Warn("User already exists",
			zap.String("email", req.Email),
			zap.Uint("tenant_id", tenantID))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user already exists with this email"})
	}

	// Enforce the tenant's configured user limit
	var count int64
	if err := database.GetDB().Model(&model.User{}).Where("tenant_id = ?", tenantID).Count(&count).Error; err != nil {
		log.Error("Failed to count tenant users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	allowed, err := tenantutil.CheckLimit(database.GetDB(), tenantID, tenantutil.ResourceUsers, count)
	if err != nil {
		log.Error("Failed to check tenant limits", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}
	if !allowed {
		log.Warn("User limit reached", zap.Uint("tenant_id", tenantID), zap.Int64("count", count))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user limit reached for tenant"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}

	user := model.User{
		TenantID: tenantID,
		Email:    req.Email,
		Password: string(hashedPassword),
		Name:     req.Name,
		Role:     role,
		Status:   model.StatusActive,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if result := database.GetDB().Create(&user); result.Error != nil {
		// Concurrent registrations can both pass the existence check; the
		// composite unique index on (email, tenant_id) decides the loser here
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			log.Warn("User already exists",
				zap.String("email", req.Email),
				zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "user already exists with this email"})
		}
		log.Error("Failed to create user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("User registered",
		zap.String("email", user.Email),
		zap.Uint("tenant_id", user.TenantID),
		zap.String("role", user.Role))
	return c.JSON(http.StatusCreated, echo.Map{
		"user": projectUser(&user),
	})
}

// ListUsers retrieves all users under the ambient tenant. The password hash
// is excluded from every record by shape.
func ListUsers(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("list")

	tenantID, _ := middleware.GetTenantID(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var users []model.User
	if result := database.GetDB().Where("tenant_id = ?", tenantID).Find(&users); result.Error != nil {
		log.Error("Failed to list users", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, users)
}

// GetCurrentUser re-reads the authenticated identity's own record scoped by
// tenant rather than echoing the identity attached by the auth gate.
func GetCurrentUser(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordUserOperation("me")

	tenantID, _ := middleware.GetTenantID(c)
	identity, ok := middleware.GetUser(c)
	if !ok {
		log.Error("Authenticated identity missing from context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var user model.User
	result := database.GetDB().Where("id = ? AND tenant_id = ?", identity.ID, tenantID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			log.Warn("User not found", zap.Uint("user_id", identity.ID), zap.Uint("tenant_id", tenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		log.Error("Failed to load user", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, user)
}
