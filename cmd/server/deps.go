package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ergo/ergo/api/internal/codec"
	"github.com/ergo/ergo/api/internal/config"
	"github.com/ergo/ergo/api/internal/handler"
	"github.com/ergo/ergo/api/internal/middleware"
	"github.com/ergo/ergo/api/internal/pkg/circuitbreaker"
	"github.com/ergo/ergo/api/internal/service"
)

const janitorInterval = time.Minute

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Optional; set when redis.host is configured
	Redis *redis.Client

	// Services
	CounterService *service.CounterService

	// Handlers
	CounterHandler *handler.CounterHandler
	HealthHandler  *handler.HealthHandler

	// Middleware; RateLimitMiddleware is nil when rate limiting is disabled
	RateLimitMiddleware *middleware.RateLimitMiddleware
	SentryEnabled       bool

	stopJanitor context.CancelFunc
}

// initDependencies initializes all dependencies
func initDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	ctx := context.Background()
	checks := make(map[string]handler.Pinger)

	if cfg.Redis.Configured() {
		redisClient, err := initRedis(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		deps.Redis = redisClient
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr()))
	}

	deps.CounterService = service.NewCounterService(
		codec.NewYAMLDecoder(),
		codec.NewJSONEncoder(),
		logger,
	)

	deps.CounterHandler = handler.NewCounterHandler(deps.CounterService)
	deps.HealthHandler = handler.NewHealthHandler(checks, version)

	if cfg.RateLimit.Enabled {
		limiter, err := deps.initLimiter()
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.RateLimitMiddleware = middleware.NewRateLimitMiddleware(middleware.RateLimitConfig{
			Limiter: limiter,
			Logger:  logger,
		})
		logger.Info("rate limiting enabled",
			zap.String("backend", cfg.RateLimit.Backend),
			zap.Float64("requests_per_second", cfg.RateLimit.RequestsPerSecond),
		)
	}

	return deps, nil
}

// initLimiter builds the configured rate limiter backend
func (d *Dependencies) initLimiter() (middleware.Limiter, error) {
	rl := d.Config.RateLimit

	switch rl.Backend {
	case "redis":
		if d.Redis == nil {
			return nil, fmt.Errorf("rate limit backend redis requires redis.host")
		}
		limit := int(rl.RequestsPerSecond * rl.Window.Seconds())
		if limit < 1 {
			limit = 1
		}
		breaker := circuitbreaker.New(circuitbreaker.Config{
			Name:        "redis_rate_limiter",
			MaxFailures: 5,
			Cooldown:    30 * time.Second,
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				d.Logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
		return middleware.NewGuardedLimiter(middleware.NewRedisLimiter(d.Redis, limit, rl.Window), breaker), nil
	default:
		limiter := middleware.NewMemoryLimiter(rl.RequestsPerSecond, rl.Burst)
		ctx, cancel := context.WithCancel(context.Background())
		limiter.StartJanitor(ctx, janitorInterval)
		d.stopJanitor = cancel
		return limiter, nil
	}
}

// Close closes all dependencies
func (d *Dependencies) Close() {
	if d.stopJanitor != nil {
		d.stopJanitor()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("failed to close Redis", zap.Error(err))
		}
	}
}

// initRedis initializes Redis client
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
