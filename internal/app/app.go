// Package app wires configuration, storage and services into the HTTP router
// shared by the server and lambda entry points.
package app

import (
	"context"
	"fmt"
	"time"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"whatsapp-catalog-service/internal/catalog"
	"whatsapp-catalog-service/internal/clients"
	"whatsapp-catalog-service/internal/config"
	"whatsapp-catalog-service/internal/database"
	"whatsapp-catalog-service/internal/events"
	"whatsapp-catalog-service/internal/handlers"
	"whatsapp-catalog-service/internal/middleware"
	"whatsapp-catalog-service/internal/ratelimit"
	"whatsapp-catalog-service/internal/repository"
	"whatsapp-catalog-service/internal/secrets"
	"whatsapp-catalog-service/internal/services"
)

// App holds the router and everything that must be released on shutdown.
type App struct {
	Router  *gin.Engine
	Config  *config.Config
	Imports *services.ImportService

	db        *gorm.DB
	redis     *redis.Client
	publisher *events.Publisher
	secrets   *secrets.GCPSecretManager
	logger    *logrus.Logger
}

// NewLogger builds the JSON logger used by every component.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

// Build connects the optional backends and mounts the routes.
// Missing Redis or NATS degrade to in-process behaviour; a missing database
// disables import jobs.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &App{logger: logger}

	// Access token from GCP Secret Manager
	if cfg.AccessTokenSecret != "" && cfg.GCPProjectID != "" {
		sm, err := secrets.NewGCPSecretManager(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GCP Secret Manager: %w", err)
		}
		a.secrets = sm
		token, err := sm.GetAccessToken(ctx, cfg.AccessTokenSecret)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("failed to load access token: %w", err)
		}
		cfg = cfg.With(config.WithAccessToken(token))
		logger.Info("Access token loaded from Secret Manager")
	}
	a.Config = cfg

	// Rate window shared across replicas when Redis is configured
	var limiter clients.RateLimiter
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			a.Close(ctx)
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		a.redis = redis.NewClient(opts)
		if err := a.redis.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable, shared rate window fails open until it recovers")
		}
		limiter = ratelimit.NewRedisWindow(a.redis, "whatsapp_catalog:ratelimit:"+cfg.CatalogID,
			cfg.MaxRequestsPerHour, cfg.RateWindow, logger)
		logger.Info("Using Redis rate window")
	}

	manager := catalog.New(cfg, limiter, logger)

	// Events are optional
	var publisher services.EventPublisher
	if cfg.NATSURL != "" {
		p, err := events.NewPublisher(cfg.NATSURL, cfg.BusinessAccountID, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to connect events publisher, events disabled")
		} else {
			a.publisher = p
			publisher = p
		}
	}

	catalogService := services.NewCatalogService(manager, publisher, logger)

	checks := map[string]handlers.ReadinessCheck{}
	h := &handlers.Handlers{
		Catalog:  handlers.NewCatalogHandler(catalogService),
		Messages: handlers.NewMessageHandler(catalogService),
	}

	// Import jobs need the database
	db, err := database.Connect(cfg.DatabaseDSN(), cfg.Environment)
	if err != nil {
		logger.WithError(err).Warn("Database unavailable, import jobs disabled")
	} else {
		a.db = db
		if err := database.Migrate(db); err != nil {
			logger.WithError(err).Warn("Auto-migration failed")
		}
		a.Imports = services.NewImportService(repository.NewImportRepository(db), manager, publisher, cfg, logger)
		if n, err := a.Imports.RecoverInterrupted(ctx); err != nil {
			logger.WithError(err).Warn("Failed to recover interrupted import jobs")
		} else if n > 0 {
			logger.WithField("jobs", n).Info("Recovered interrupted import jobs")
		}
		h.Imports = handlers.NewImportHandler(a.Imports)
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}
	h.Health = handlers.NewHealthHandler(checks)

	a.Router = newRouter(cfg, h, logger)
	return a, nil
}

func newRouter(cfg *config.Config, h *handlers.Handlers, logger *logrus.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:3001"}
	}
	router.Use(middleware.CORS(origins))

	httpMetrics := gosharedmw.InitGlobalMetrics("whatsapp", "catalog_service")
	router.Use(httpMetrics.Middleware())

	handlers.RegisterRoutes(router, h)
	return router
}

// Close cancels running imports and releases every connection.
func (a *App) Close(ctx context.Context) {
	if a.Imports != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := a.Imports.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Import jobs did not stop in time")
		}
		cancel()
	}
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.secrets != nil {
		_ = a.secrets.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
