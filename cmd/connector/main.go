package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erplink/backend/internal/infrastructure/config"
	"github.com/erplink/backend/internal/infrastructure/connector"
	"github.com/erplink/backend/internal/infrastructure/logger"
	"github.com/erplink/backend/internal/infrastructure/persistence"
	"github.com/erplink/backend/internal/interfaces/http/handler"
	"github.com/erplink/backend/internal/interfaces/http/middleware"
	"github.com/erplink/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ERP connector",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("backend", cfg.ERP.Backend),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Local store: backs the local backend and durable connector settings
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to open local store", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing local store", zap.Error(err))
		}
	}()
	log.Info("Local store ready", zap.String("path", cfg.Database.Path))

	settings, err := persistence.NewGormSettingsRepository(db.DB)
	if err != nil {
		log.Fatal("Failed to prepare settings store", zap.Error(err))
	}

	registry, err := buildRegistry(cfg, db, settings, log)
	if err != nil {
		log.Fatal("Failed to build ERP backends", zap.Error(err))
	}

	// Gin engine with zap request logging
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Invalid trusted proxy configuration", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.CORS())

	engine.GET("/health", healthHandler(db))

	r := router.NewRouter(engine)
	r.Register(handler.NewERPHandler(registry, log))
	r.Register(handler.NewSystemHandler(registry))
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildRegistry constructs every enabled backend adapter and selects the
// configured one as active. Only enabled backends are registered; the local
// backend always is, since it needs nothing beyond the local store.
func buildRegistry(cfg *config.Config, db *persistence.Database, settings *persistence.GormSettingsRepository, log *zap.Logger) (*connector.Registry, error) {
	reporter := connector.NewZapReporter(log)
	registry := connector.NewRegistry(cfg.ERP.Backend)

	local, err := connector.NewLocalBackend(db.DB, reporter, log)
	if err != nil {
		return nil, err
	}
	registry.Register(local)

	if cfg.ERP.P21.Enabled {
		p21Cfg := &connector.P21Config{
			BaseURL:        cfg.ERP.P21.BaseURL,
			TokenURL:       cfg.ERP.P21.TokenURL,
			ClientID:       cfg.ERP.P21.ClientID,
			ClientSecret:   cfg.ERP.P21.ClientSecret,
			Username:       cfg.ERP.P21.Username,
			Password:       cfg.ERP.P21.Password,
			Enabled:        true,
			MultiWarehouse: cfg.ERP.P21.MultiWarehouse,
			CompanyNumber:  cfg.ERP.P21.CompanyNumber,
			Operator:       cfg.ERP.P21.Operator,
			TimeoutSeconds: cfg.ERP.P21.TimeoutSeconds,
		}
		p21, err := connector.NewP21Backend(context.Background(), p21Cfg, settings, reporter, log)
		if err != nil {
			return nil, err
		}
		registry.Register(p21)
	}

	if cfg.ERP.Inform.Enabled {
		informCfg := &connector.InformConfig{
			BaseURL:        cfg.ERP.Inform.BaseURL,
			Username:       cfg.ERP.Inform.Username,
			Password:       cfg.ERP.Inform.Password,
			Enabled:        true,
			MultiWarehouse: cfg.ERP.Inform.MultiWarehouse,
			CompanyNumber:  cfg.ERP.Inform.CompanyNumber,
			Operator:       cfg.ERP.Inform.Operator,
			ClientCode:     cfg.ERP.Inform.ClientCode,
			TimeoutSeconds: cfg.ERP.Inform.TimeoutSeconds,
		}
		inform, err := connector.NewInformBackend(informCfg, reporter, log)
		if err != nil {
			return nil, err
		}
		registry.Register(inform)
	}

	return registry, nil
}

// healthHandler reports process and local store health.
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
