package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ArmanAmreliya/gearguard-odoo-maintenance/api/swagger"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/handler"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/middleware"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/repository"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/service"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/cache"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/config"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/database"
	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/logger"
	corsmiddleware "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/middleware/cors"
	reqidmiddleware "github.com/ArmanAmreliya/gearguard-odoo-maintenance/pkg/middleware/requestid"
)

// @title GearGuard Maintenance API
// @version 1.0.0
// @description Equipment maintenance management: teams, assets, request lifecycle, insights and reports
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API degrades to uncached reads when Redis is unavailable.
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Insights.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "gearguard",
		Audience:           []string{"gearguard-api"},
	})
	userSvc := service.NewUserService(userRepo, teamRepo, validate, logr)
	teamSvc := service.NewTeamService(teamRepo, validate, logr)
	equipmentSvc := service.NewEquipmentService(equipmentRepo, requestRepo, teamRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, requestRepo, service.NotificationConfig{
		ScanInterval:     cfg.Notifications.ScanInterval,
		DueSoonThreshold: cfg.Notifications.DueSoonThreshold,
		WorkerCount:      cfg.Notifications.WorkerCount,
		WorkerRetries:    cfg.Notifications.WorkerRetries,
	}, logr)
	requestSvc := service.NewRequestService(requestRepo, equipmentRepo, userRepo, cacheSvc, notificationSvc, validate, logr)
	insightsSvc := service.NewInsightsService(requestRepo, equipmentRepo, cacheSvc, service.InsightsConfig{
		CacheTTL:       cfg.Insights.CacheTTL,
		UpcomingWindow: cfg.Insights.UpcomingWindow,
	}, logr)
	reportSvc := service.NewReportService(requestRepo, equipmentRepo, service.ReportsConfig{
		MaxExport:  cfg.Reports.MaxExport,
		SheetTitle: cfg.Reports.SheetTitle,
	}, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	teamHandler := handler.NewTeamHandler(teamSvc)
	equipmentHandler := handler.NewEquipmentHandler(equipmentSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	systemHandler := handler.NewSystemHandler(db, metricsSvc)

	matrix := middleware.DefaultRouteMatrix(cfg.APIPrefix)
	matrix.AllowPublic("/health", "/ready", "/metrics", "/auth/refresh", "/docs", "/docs/:file")
	matrix.AllowAll(
		"/auth/me",
		"/auth/change-password",
		"/requests/:id",
		"/equipment/:id/health",
		"/equipment/:id/health/summary",
		"/dashboard/insights",
		"/notifications",
		"/notifications/unread-count",
		"/notifications/read-all",
		"/notifications/preferences",
		"/notifications/:id",
		"/notifications/:id/read",
	)
	matrix.Allow(models.RoleAdmin,
		"/requests",
		"/admin/users/:id",
		"/admin/system/metrics",
		"/teams/:id",
		"/reports/summary",
		"/reports/team-performance",
		"/reports/health-ranking",
		"/reports/export",
	)
	matrix.Allow(models.RoleTechnician, "/requests")

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.OptionalJWT(authSvc))
	r.Use(matrix.Guard())

	r.GET("/health", systemHandler.Health)
	r.GET("/ready", systemHandler.Ready)
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/change-password", authHandler.ChangePassword)
			auth.GET("/me", authHandler.Me)
			auth.GET("/session", authHandler.Session)
		}

		admin := api.Group("/admin", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", userHandler.List)
			admin.POST("/users", middleware.Audit(userRepo, models.AuditActionCreate, "user"), userHandler.Create)
			admin.GET("/users/:id", userHandler.Get)
			admin.PUT("/users/:id", middleware.Audit(userRepo, models.AuditActionUpdate, "user"), userHandler.Update)
			admin.DELETE("/users/:id", middleware.Audit(userRepo, models.AuditActionDelete, "user"), userHandler.Deactivate)
			admin.GET("/system/metrics", systemHandler.Metrics)
		}

		teams := api.Group("/teams", middleware.RequireRoles(models.RoleAdmin))
		{
			teams.GET("", teamHandler.List)
			teams.POST("", middleware.Audit(userRepo, models.AuditActionCreate, "team"), teamHandler.Create)
			teams.GET("/:id", teamHandler.Get)
			teams.PUT("/:id", middleware.Audit(userRepo, models.AuditActionUpdate, "team"), teamHandler.Update)
			teams.DELETE("/:id", middleware.Audit(userRepo, models.AuditActionDelete, "team"), teamHandler.Delete)
		}

		equipment := api.Group("/equipment")
		{
			equipment.GET("", equipmentHandler.List)
			equipment.GET("/:id", equipmentHandler.Get)
			equipment.POST("", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(userRepo, models.AuditActionCreate, "equipment"), equipmentHandler.Create)
			equipment.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(userRepo, models.AuditActionUpdate, "equipment"), equipmentHandler.Update)
			equipment.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(userRepo, models.AuditActionDelete, "equipment"), equipmentHandler.Delete)

			if cfg.Insights.Enabled {
				equipment.GET("/:id/health", insightsHandler.EquipmentHealth)
				equipment.GET("/:id/health/summary", insightsHandler.HealthSummary)
			}
		}

		requests := api.Group("/requests")
		{
			requests.GET("", requestHandler.List)
			requests.POST("", requestHandler.Create)
			requests.GET("/:id", requestHandler.Get)
			requests.PATCH("/:id", middleware.Audit(userRepo, models.AuditActionStatusChange, "request"), requestHandler.Update)
			requests.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), middleware.Audit(userRepo, models.AuditActionDelete, "request"), requestHandler.Delete)
		}

		if cfg.Insights.Enabled {
			api.GET("/dashboard/insights", insightsHandler.Overview)
		}

		if cfg.Reports.Enabled {
			reports := api.Group("/reports", middleware.RequireRoles(models.RoleAdmin))
			{
				reports.GET("/summary", reportHandler.Summary)
				reports.GET("/team-performance", reportHandler.TeamPerformance)
				reports.GET("/health-ranking", reportHandler.HealthRanking)
				reports.GET("/export", reportHandler.Export)
			}
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.List)
			notifications.GET("/unread-count", notificationHandler.UnreadCount)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.Delete)
			notifications.GET("/preferences", notificationHandler.Preferences)
			notifications.PUT("/preferences", notificationHandler.UpdatePreferences)
		}
	}

	scanCtx, stopScanner := context.WithCancel(context.Background())
	if cfg.Notifications.Enabled {
		notificationSvc.Start(scanCtx)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	stopScanner()
	if cfg.Notifications.Enabled {
		notificationSvc.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}
