package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/disdik-dki/anjab-api/api/swagger"
	"github.com/disdik-dki/anjab-api/internal/handler"
	"github.com/disdik-dki/anjab-api/internal/middleware"
	"github.com/disdik-dki/anjab-api/internal/models"
	"github.com/disdik-dki/anjab-api/internal/repository"
	"github.com/disdik-dki/anjab-api/internal/service"
	"github.com/disdik-dki/anjab-api/pkg/cache"
	"github.com/disdik-dki/anjab-api/pkg/config"
	"github.com/disdik-dki/anjab-api/pkg/database"
	"github.com/disdik-dki/anjab-api/pkg/logger"
	corsmiddleware "github.com/disdik-dki/anjab-api/pkg/middleware/cors"
	reqidmiddleware "github.com/disdik-dki/anjab-api/pkg/middleware/requestid"
)

// @title Anjab API
// @version 1.0.0
// @description Job-analysis registry for the education office: employee records, review workflow, and bulk import.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	changeRepo := repository.NewChangeRequestRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	importRepo := repository.NewImportRepository(db, cfg.Import.BatchSize)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, activityRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "anjab-api",
	})
	employeeSvc := service.NewEmployeeService(employeeRepo, activityRepo, cacheRepo, logr)
	changeSvc := service.NewChangeRequestService(changeRepo, employeeRepo, activityRepo, cacheRepo, validate, logr)
	importSvc := service.NewImportService(importRepo, logr)
	exportSvc := service.NewExportService(employeeRepo, logr)
	dashboardSvc := service.NewDashboardService(dashboardRepo, changeRepo, cacheRepo, metricsSvc, service.DashboardConfig{
		CacheEnabled: cfg.Dashboard.CacheEnabled,
		CacheTTL:     cfg.Dashboard.CacheTTL,
	}, logr)
	userSvc := service.NewUserService(userRepo, employeeRepo, activityRepo, activityRepo, validate, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc, changeSvc)
	changeHandler := handler.NewChangeRequestHandler(changeSvc)
	importHandler := handler.NewImportHandler(importSvc, metricsSvc, cfg.Import.MaxUploadBytes)
	exportHandler := handler.NewExportHandler(exportSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	adminHandler := handler.NewAdminHandler(userSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group("/api/v1")
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleKasudin)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	employees := authed.Group("/employees")
	{
		employees.GET("", employeeHandler.List)
		employees.GET("/options", employeeHandler.Options)
		employees.GET("/:id", employeeHandler.Get)
		employees.POST("", adminOnly, employeeHandler.Create)
		employees.PUT("/:id", employeeHandler.Update)
		employees.DELETE("/:id", adminOnly, employeeHandler.Delete)
		employees.GET("/:id/history", changeHandler.History)
		employees.PUT("/:id/mark-read", changeHandler.MarkRead)
	}

	changes := authed.Group("/changes")
	{
		changes.POST("", changeHandler.Submit)
		changes.GET("", staff, changeHandler.List)
		changes.GET("/:id", staff, changeHandler.Diff)
		changes.POST("/:id/decide", adminOnly, changeHandler.Decide)
	}

	authed.POST("/import", adminOnly, importHandler.Upload)
	authed.GET("/import/template", importHandler.Template)
	authed.GET("/export", exportHandler.Export)

	dashboard := authed.Group("/dashboard")
	{
		dashboard.GET("/stats", dashboardHandler.Stats)
		dashboard.GET("/pension-detail/:year", dashboardHandler.PensionDetail)
		dashboard.GET("/notifications", dashboardHandler.Notifications)
	}

	admin := authed.Group("/admin", adminOnly)
	{
		admin.POST("/users", adminHandler.CreateUser)
		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/logs", adminHandler.ListLogs)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
