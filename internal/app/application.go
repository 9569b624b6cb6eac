package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"site-builder-backend/internal/background"
	"site-builder-backend/internal/config"
	"site-builder-backend/internal/events"
	"site-builder-backend/internal/handlers"
	"site-builder-backend/internal/middleware"
	"site-builder-backend/internal/models"
	"site-builder-backend/internal/preview"
	"site-builder-backend/internal/repository"
	"site-builder-backend/internal/sections"
	"site-builder-backend/internal/service"
	"site-builder-backend/internal/templates"
	"site-builder-backend/pkg/cache"
	"site-builder-backend/pkg/logger"
)

type Application struct {
	cfg *config.Config

	db        *gorm.DB
	cache     *cache.Cache
	publisher events.Publisher

	scheduler   *background.Scheduler
	rateLimiter *middleware.RateLimitManager
	hub         *preview.Hub

	builderService *service.BuilderService
	handlers       handlers.Handlers

	router *gin.Engine
	server *http.Server

	cancel context.CancelFunc
}

func New(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		cfg:    cfg,
		cancel: cancel,
	}

	if err := app.initDatabase(); err != nil {
		cancel()
		return nil, err
	}

	if err := app.runMigrations(); err != nil {
		app.closeResources()
		return nil, err
	}

	if err := app.initCache(); err != nil {
		app.closeResources()
		return nil, err
	}

	if err := app.initPublisher(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.scheduler = background.NewScheduler(background.SchedulerConfig{
		WorkerCount: cfg.WorkerCount,
		QueueSize:   cfg.QueueSize,
	})
	app.scheduler.Start(ctx)

	app.rateLimiter = middleware.NewRateLimitManager(ctx)
	app.hub = preview.NewHub(preview.WithAllowedOrigins(previewOrigins(cfg.CORSOrigins)))

	if err := app.initServices(); err != nil {
		app.closeResources()
		return nil, err
	}

	app.initRouter()

	app.server = &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        app.router,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   35 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return app, nil
}

func (a *Application) Run() error {
	logger.Info("Server starting", map[string]interface{}{
		"port":        a.cfg.Port,
		"environment": a.cfg.Environment,
		"database":    a.db != nil,
		"redis":       a.cache != nil && a.cache.Enabled(),
		"nats":        a.cfg.EnableNATS,
	})

	return a.server.ListenAndServe()
}

// Shutdown stops accepting requests, drains background jobs and releases
// connections.
func (a *Application) Shutdown(ctx context.Context) error {
	var errs []error

	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shut down server: %w", err))
		}
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.scheduler != nil {
		if err := a.scheduler.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to drain background jobs: %w", err))
		}
	}

	if a.rateLimiter != nil {
		if err := a.rateLimiter.Shutdown(); err != nil {
			logger.Error(err, "Failed to stop rate limiter", nil)
		}
	}

	a.closeResources()

	return errors.Join(errs...)
}

func (a *Application) Router() *gin.Engine {
	return a.router
}

func (a *Application) closeResources() {
	if a.cancel != nil {
		a.cancel()
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Error(err, "Failed to close event publisher", nil)
		}
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			logger.Error(err, "Failed to close cache connection", nil)
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
}

func (a *Application) initDatabase() error {
	if !a.cfg.EnableDatabase {
		logger.Warn("Database disabled, saved pages are kept in memory", nil)
		return nil
	}

	logger.Info("Connecting to database", nil)

	db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	a.db = db
	return nil
}

func (a *Application) runMigrations() error {
	if a.db == nil {
		return nil
	}

	logger.Info("Running database migrations", nil)

	if err := a.db.AutoMigrate(&models.PageRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("Database migration completed", nil)
	return nil
}

func (a *Application) initCache() error {
	c, err := cache.NewCache(a.cfg.RedisURL, a.cfg.EnableRedis)
	if err != nil {
		return err
	}
	a.cache = c
	return nil
}

func (a *Application) initPublisher() error {
	if !a.cfg.EnableNATS {
		a.publisher = events.NoopPublisher{}
		return nil
	}

	publisher, err := events.NewNATSPublisher(events.NATSConfig{
		URL:     a.cfg.NATSURL,
		Subject: a.cfg.NATSSubject,
		Stream:  a.cfg.NATSStream,
	})
	if err != nil {
		return err
	}
	a.publisher = publisher
	return nil
}

func (a *Application) pageRepository() repository.PageRepository {
	if a.db == nil {
		return repository.NewMemoryPageRepository()
	}
	return repository.NewPageRepository(a.db)
}

func (a *Application) initServices() error {
	registry, err := sections.LoadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load section registry: %w", err)
	}

	catalog, err := templates.LoadCatalog()
	if err != nil {
		return fmt.Errorf("failed to load template catalog: %w", err)
	}

	var backups service.BackupStore
	if a.cache.Enabled() {
		backups = cache.NewBackupStore(a.cache, a.cfg.BackupTTL)
	}

	a.builderService = service.NewBuilderService(
		registry,
		catalog,
		a.pageRepository(),
		backups,
		a.publisher,
		a.scheduler,
		service.BuilderConfig{
			ExportLang:  a.cfg.ExportLang,
			MaxSessions: a.cfg.MaxSessions,
			JobTimeout:  a.cfg.JobTimeout,
			JobRetries:  a.cfg.JobRetries,
		},
	)

	a.handlers = handlers.Handlers{
		Builder: handlers.NewBuilderHandler(a.builderService, a.hub),
		Catalog: handlers.NewCatalogHandler(a.builderService),
		Pages:   handlers.NewPageHandler(a.builderService),
	}

	logger.Info("Builder service ready", map[string]interface{}{
		"section_types": registry.Len(),
		"templates":     len(catalog.List("")),
		"export_lang":   a.cfg.ExportLang,
	})
	return nil
}

const maxRequestBytes = 2 << 20

// operationLimits are the per-IP budgets of the expensive builder operations,
// as requests per minute.
var operationLimits = map[string]int{
	"import":  20,
	"save":    30,
	"publish": 10,
	"export":  60,
}

func (a *Application) operationGuard(operation string) gin.HandlerFunc {
	limit, ok := operationLimits[operation]
	if !ok {
		return nil
	}
	return middleware.OperationRateLimitMiddleware(a.rateLimiter, operation, limit, 60)
}

func (a *Application) initRouter() {
	if a.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(logger.GinLogger())
	if a.cfg.EnableMetrics {
		router.Use(middleware.MetricsMiddleware())
	}
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(a.rateLimiter, a.cfg.RateLimitRequests, a.cfg.RateLimitWindow))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: !containsWildcard(a.cfg.CORSOrigins),
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"sessions": a.builderService.SessionCount(),
			"previews": a.hub.Connections(),
		})
	})

	if a.cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.BodyLimitMiddleware(maxRequestBytes))
	handlers.RegisterRoutes(api, a.handlers, a.operationGuard)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	a.router = router
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if strings.TrimSpace(origin) == "*" {
			return true
		}
	}
	return false
}

// previewOrigins returns the origins allowed to open preview sockets. A
// wildcard CORS setting leaves the socket open to every origin.
func previewOrigins(origins []string) []string {
	if containsWildcard(origins) {
		return nil
	}
	return origins
}
