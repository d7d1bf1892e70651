package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ergo/ergo/api/internal/pkg/circuitbreaker"
)

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// MemoryLimiter is a per-key token bucket kept in process memory
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewMemoryLimiter creates a token bucket limiter refilling rps tokens per second
func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*limiterEntry),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 15 * time.Minute,
		now:     time.Now,
	}
}

// Allow implements Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	ent, ok := l.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = ent
	}
	ent.lastSeen = now
	l.mu.Unlock()

	res := ent.lim.ReserveN(now, 1)
	if !res.OK() {
		return Decision{Allowed: false, Limit: l.burst}, nil
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return Decision{Allowed: false, Limit: l.burst, RetryAfter: delay}, nil
	}

	remaining := int(math.Floor(ent.lim.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}
	return Decision{Allowed: true, Limit: l.burst, Remaining: remaining}, nil
}

// Cleanup drops keys idle for longer than the idle TTL
func (l *MemoryLimiter) Cleanup() {
	cutoff := l.now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// StartJanitor runs Cleanup every interval until ctx is done
func (l *MemoryLimiter) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

// RedisLimiter is a sliding window counter shared through Redis
type RedisLimiter struct {
	redis  *redis.Client
	max    int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing max requests per window
func NewRedisLimiter(redisClient *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		redis:  redisClient,
		max:    limit,
		window: window,
	}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	key = "ratelimit:" + key
	now := time.Now()
	windowStart := now.Add(-l.window).UnixNano()

	pipe := l.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(windowStart, 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit lookup: %w", err)
	}

	count := countCmd.Val()
	if count >= int64(l.max) {
		return Decision{Allowed: false, Limit: l.max, RetryAfter: l.window}, nil
	}

	pipe = l.redis.TxPipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, l.window*2)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit record: %w", err)
	}

	return Decision{Allowed: true, Limit: l.max, Remaining: l.max - int(count) - 1}, nil
}

// GuardedLimiter stops calling a failing backend while its breaker is open.
// Errors, including circuitbreaker.ErrOpen, are returned to the caller.
type GuardedLimiter struct {
	limiter Limiter
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedLimiter wraps limiter with breaker
func NewGuardedLimiter(limiter Limiter, breaker *circuitbreaker.CircuitBreaker) *GuardedLimiter {
	return &GuardedLimiter{limiter: limiter, breaker: breaker}
}

// Allow implements Limiter
func (g *GuardedLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	var decision Decision
	err := g.breaker.Execute(ctx, func() error {
		var err error
		decision, err = g.limiter.Allow(ctx, key)
		return err
	})
	return decision, err
}

// RateLimitConfig configures the rate limit middleware
type RateLimitConfig struct {
	// Limiter backend
	Limiter Limiter
	// Key generator function
	KeyGenerator func(*fiber.Ctx) string
	// Skip function
	Skip func(*fiber.Ctx) bool
	// Logger reports backend failures
	Logger *zap.Logger
}

// RateLimitMiddleware limits requests per client
type RateLimitMiddleware struct {
	config RateLimitConfig
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(config RateLimitConfig) *RateLimitMiddleware {
	if config.KeyGenerator == nil {
		config.KeyGenerator = func(c *fiber.Ctx) string {
			return c.IP()
		}
	}
	if config.Skip == nil {
		config.Skip = HealthSkipper
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return &RateLimitMiddleware{config: config}
}

// Handler returns the rate limit handler. Rejections are returned as
// 429 errors for the error handler; backend failures let the request through.
func (m *RateLimitMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m.config.Skip(c) {
			return c.Next()
		}

		decision, err := m.config.Limiter.Allow(c.UserContext(), m.config.KeyGenerator(c))
		if err != nil {
			m.config.Logger.Warn("rate limiter unavailable", zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			retry := int(math.Ceil(decision.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return fiber.NewError(fiber.StatusTooManyRequests, "rate limit exceeded")
		}

		return c.Next()
	}
}
