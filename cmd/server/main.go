package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/bootstrap"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/config"
	"github.com/Nadifnugraha/dicowi/internal/infrastructure/logger"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/handler"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/middleware"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Dicowi Dashboard API
//	@version		1.0
//	@description	Sales analytics over an e-commerce order bundle
//	@BasePath		/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting dashboard server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("bundle_source", cfg.Bundle.Source),
	)

	// Load the bundle once; every request is served from memory
	dash, err := bootstrap.NewDashboard(context.Background(), cfg, log)
	if err != nil {
		log.Fatal("Failed to load bundle", zap.Error(err))
	}
	defer func() {
		if err := dash.Close(); err != nil {
			log.Warn("Failed to release dashboard resources", zap.Error(err))
		}
	}()

	if report := dash.Service.ResolveReport(); report.MissingProducts > 0 || report.MissingOrders > 0 {
		log.Warn("Some line items have no matching product or order",
			zap.Int("missing_products", report.MissingProducts),
			zap.Int("missing_orders", report.MissingOrders),
		)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.NewEngine(router.EngineConfig{
		Logger:      log,
		Metrics:     middleware.NewHTTPMetrics("dicowi"),
		CORSOrigins: cfg.HTTP.CORSAllowOrigins,
	})

	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, dash.Store.RowCounts())
	dashboardHandler := handler.NewDashboardHandler(dash.Service)

	engine.GET("/health", systemHandler.Health)

	router.NewRouter(engine).
		Register(systemHandler).
		Register(dashboardHandler).
		Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}
