package main

import (
	"tenant-api/internal/handler"
	mid "tenant-api/internal/middleware"
	"tenant-api/internal/model"
	"tenant-api/pkg/config"
	"tenant-api/pkg/database"
	"tenant-api/pkg/jwtutil"
	"tenant-api/pkg/logger"
	"tenant-api/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()
	log.Info("Starting tenant API", zap.String("environment", cfg.Server.Env))

	// Initialize database and run migrations
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(&model.Tenant{}, &model.User{}, &model.Product{}); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", cfg.Metrics.Prefix))

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.CORS())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware)

	// Operational endpoints - outside the tenant-resolved API surface
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Every API request carries a tenant header; requests without one are
	// rejected before reaching any handler
	api := e.Group("/api", mid.TenantMiddleware)

	// Tenant management - administrative, cross-tenant
	tenants := api.Group("/tenants")
	tenants.GET("/config/current", handler.GetTenantConfig)
	tenants.GET("", handler.ListTenants, mid.AuthMiddleware, mid.RequireAdmin)
	tenants.GET("/:id", handler.GetTenant, mid.AuthMiddleware, mid.RequireAdmin)
	tenants.POST("", handler.CreateTenant, mid.AuthMiddleware, mid.RequireAdmin)
	tenants.PUT("/:id", handler.UpdateTenant, mid.AuthMiddleware, mid.RequireAdmin)

	// User routes - login and registration are public within the tenant scope
	users := api.Group("/users")
	users.POST("/login", handler.Login)
	users.POST("/register", handler.Register)
	users.GET("/me", handler.GetCurrentUser, mid.AuthMiddleware)
	users.GET("", handler.ListUsers, mid.AuthMiddleware, mid.RequireAdmin)

	// Product routes - tenant-scoped, reads for any authenticated user,
	// writes for admins
	products := api.Group("/products", mid.AuthMiddleware)
	products.GET("", handler.ListProducts)
	products.GET("/:id", handler.GetProduct)
	products.POST("", handler.CreateProduct, mid.RequireAdmin)
	products.PUT("/:id", handler.UpdateProduct, mid.RequireAdmin)
	products.DELETE("/:id", handler.DeleteProduct, mid.RequireAdmin)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
