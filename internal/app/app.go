package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recruitportal_backend/database"
	"recruitportal_backend/internal/cache"
	"recruitportal_backend/internal/config"
	"recruitportal_backend/internal/handlers"
	"recruitportal_backend/internal/logger"
	"recruitportal_backend/internal/middleware"
	"recruitportal_backend/internal/routes"
	"recruitportal_backend/internal/services"
	"recruitportal_backend/internal/validator"
	"recruitportal_backend/internal/workers"
	"recruitportal_backend/pkg/apperrors"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)
	apperrors.SetDebug(cfg.Server.Debug)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	sc := initializeServices(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Database.SeedDefaultData {
		if err := seedDefaultPlans(ctx, gormDB, sc, cfg); err != nil {
			logger.Fatal("Failed to seed default plans", "error", err)
		}
	}

	if cfg.Workers.Enabled {
		worker := workers.NewSubscriptionWorker(gormDB, sc,
			time.Duration(cfg.Workers.ExpirySweepSeconds)*time.Second,
			time.Duration(cfg.Workers.IndexReconcileSeconds)*time.Second,
		)
		go worker.Start(ctx)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           SetupRouter(cfg, gormDB, sc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	return services.NewServiceContainer(services.ContainerOptions{
		Cache:         cache.Initialize(cfg),
		CacheTTL:      cfg.CacheTTL(),
		LockTimeout:   cfg.LockTimeout(),
		RefundRetries: cfg.Billing.RefundRetries,
	})
}

// SetupRouter собирает gin с middleware и маршрутами
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, sc *services.ServiceContainer) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	baseHandler := handlers.NewBaseHandler(validator.New())
	appHandlers := handlers.NewAppHandlers(baseHandler, sc)

	guards := handlers.RouteGuards{
		Auth:      middleware.AuthMiddleware(cfg.JWT.Secret),
		RateLimit: middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst).Middleware(),
	}

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, guards)
	return ginRouter
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.DBMiddleware(db))
	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-ID")
	corsCfg.ExposeHeaders = []string{"X-Request-ID"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	return corsCfg
}
