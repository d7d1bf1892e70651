package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ergo/ergo/api/internal/config"
	"github.com/ergo/ergo/api/internal/middleware"
	"github.com/ergo/ergo/api/internal/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "0.1.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	defer log.Sync()

	// Initialize Sentry if enabled
	sentryEnabled := initSentry(cfg, log)
	if sentryEnabled {
		defer middleware.FlushSentry(5 * time.Second)
	}

	// Initialize dependencies
	deps, err := initDependencies(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize dependencies", zap.Error(err))
	}
	defer deps.Close()
	deps.SentryEnabled = sentryEnabled

	app := newApp(deps)

	// Start server
	go func() {
		addr := cfg.Server.Addr()
		log.Info("starting server",
			zap.String("addr", addr),
			zap.String("version", version),
			zap.Bool("legacy_get", cfg.Server.LegacyGetEnabled),
		)
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}

	log.Info("server stopped")
}

// newApp builds the fiber app. Every failure, including routing and body
// limit errors raised by fiber itself, is answered by the error handler.
func newApp(deps *Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		AppName:               "ergo",
		BodyLimit:             cfg.Server.BodyLimit,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: cfg.IsProduction(),
		ErrorHandler: middleware.ErrorHandler(middleware.ErrorHandlerConfig{
			Logger:        deps.Logger,
			SentryEnabled: deps.SentryEnabled,
		}),
	})

	app.Use(middleware.RequestID())

	// Metrics wraps the logger so it records the translated status
	metricsMiddleware := middleware.NewMetricsMiddleware(middleware.DefaultMetricsConfig())
	app.Use(metricsMiddleware.Handler())

	loggerMiddleware := middleware.NewLoggerMiddleware(middleware.DefaultLoggerConfig(deps.Logger))
	app.Use(loggerMiddleware.Handler())

	app.Use(middleware.RecoverWithSentry(deps.Logger, deps.SentryEnabled))

	if deps.SentryEnabled {
		app.Use(middleware.SentryMiddleware())
	}

	if deps.RateLimitMiddleware != nil {
		app.Use(deps.RateLimitMiddleware.Handler())
	}

	registerRoutes(app, deps)

	return app
}

// initSentry initializes Sentry when a DSN is configured and reports
// whether it is active
func initSentry(cfg *config.Config, log *zap.Logger) bool {
	if !cfg.Sentry.Enabled() {
		return false
	}

	sentryConfig := middleware.SentryOptions{
		DSN:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		Release:          cfg.Sentry.Release,
		Debug:            cfg.Sentry.Debug,
		SampleRate:       cfg.Sentry.SampleRate,
		TracesSampleRate: cfg.Sentry.TracesSampleRate,
	}
	if sentryConfig.Release == "" {
		sentryConfig.Release = "ergo@" + version
	}
	if sentryConfig.Environment == "" {
		sentryConfig.Environment = cfg.Server.Env
	}

	if err := middleware.InitSentry(sentryConfig); err != nil {
		log.Error("failed to initialize Sentry", zap.Error(err))
		return false
	}

	log.Info("Sentry initialized",
		zap.String("environment", sentryConfig.Environment),
		zap.String("release", sentryConfig.Release),
	)
	return true
}
