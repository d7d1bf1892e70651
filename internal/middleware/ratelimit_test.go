package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ergo/ergo/api/internal/pkg/circuitbreaker"
)

// MockLimiter mocks a rate limit backend
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(Decision), args.Error(1)
}

func newRateLimitTestApp(limiter Limiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(ErrorHandlerConfig{Logger: zap.NewNop()}),
	})
	app.Use(NewRateLimitMiddleware(RateLimitConfig{
		Limiter: limiter,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "client"
		},
	}).Handler())
	app.Post("/42", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendString("alive")
	})
	return app
}

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the burst", func(t *testing.T) {
		l := NewMemoryLimiter(0.001, 2)

		d, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1, d.Remaining)
		assert.Equal(t, 2, d.Limit)

		d, err = l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 0, d.Remaining)

		d, err = l.Allow(ctx, "a")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Greater(t, d.RetryAfter, time.Duration(0))
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewMemoryLimiter(0.001, 1)

		d, _ := l.Allow(ctx, "a")
		assert.True(t, d.Allowed)
		d, _ = l.Allow(ctx, "a")
		assert.False(t, d.Allowed)
		d, _ = l.Allow(ctx, "b")
		assert.True(t, d.Allowed)
	})

	t.Run("refills over time", func(t *testing.T) {
		l := NewMemoryLimiter(1, 1)
		now := time.Now()
		l.now = func() time.Time { return now }

		d, _ := l.Allow(ctx, "a")
		assert.True(t, d.Allowed)
		d, _ = l.Allow(ctx, "a")
		assert.False(t, d.Allowed)

		now = now.Add(1100 * time.Millisecond)
		d, _ = l.Allow(ctx, "a")
		assert.True(t, d.Allowed)
	})

	t.Run("cleanup drops idle keys", func(t *testing.T) {
		l := NewMemoryLimiter(1, 1)
		now := time.Now()
		l.now = func() time.Time { return now }

		_, _ = l.Allow(ctx, "a")
		require.Len(t, l.entries, 1)

		now = now.Add(l.idleTTL + time.Second)
		l.Cleanup()
		assert.Empty(t, l.entries)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("sets headers on allowed requests", func(t *testing.T) {
		app := newRateLimitTestApp(NewMemoryLimiter(0.001, 3))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/42", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "3", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Remaining"))
	})

	t.Run("rejections go through the error handler", func(t *testing.T) {
		app := newRateLimitTestApp(NewMemoryLimiter(0.001, 1))

		_, err := app.Test(httptest.NewRequest(http.MethodPost, "/42", nil))
		require.NoError(t, err)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/42", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "rate limit exceeded", readBody(t, resp))
		assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	})

	t.Run("skips health endpoints", func(t *testing.T) {
		limiter := new(MockLimiter)
		app := newRateLimitTestApp(limiter)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/livez", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		limiter.AssertNotCalled(t, "Allow", mock.Anything, mock.Anything)
	})

	t.Run("backend failure lets the request through", func(t *testing.T) {
		limiter := new(MockLimiter)
		limiter.On("Allow", mock.Anything, "client").Return(Decision{}, errors.New("redis down"))
		app := newRateLimitTestApp(limiter)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/42", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		limiter.AssertExpectations(t)
	})

	t.Run("retry after is at least one second", func(t *testing.T) {
		limiter := new(MockLimiter)
		limiter.On("Allow", mock.Anything, "client").Return(Decision{Allowed: false, Limit: 5}, nil)
		app := newRateLimitTestApp(limiter)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/42", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
	})
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisLimiter(client, 10, time.Minute)
	_, err := l.Allow(context.Background(), "client")
	assert.Error(t, err)
}

func TestGuardedLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("passes decisions through", func(t *testing.T) {
		backend := new(MockLimiter)
		backend.On("Allow", ctx, "client").Return(Decision{Allowed: true, Limit: 5, Remaining: 4}, nil)

		l := NewGuardedLimiter(backend, circuitbreaker.New(circuitbreaker.Config{MaxFailures: 1}))
		d, err := l.Allow(ctx, "client")

		require.NoError(t, err)
		assert.Equal(t, Decision{Allowed: true, Limit: 5, Remaining: 4}, d)
	})

	t.Run("stops calling a failing backend", func(t *testing.T) {
		backend := new(MockLimiter)
		backend.On("Allow", ctx, "client").Return(Decision{}, errors.New("redis down")).Once()

		l := NewGuardedLimiter(backend, circuitbreaker.New(circuitbreaker.Config{
			MaxFailures: 1,
			Cooldown:    time.Hour,
		}))

		_, err := l.Allow(ctx, "client")
		assert.EqualError(t, err, "redis down")

		_, err = l.Allow(ctx, "client")
		assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
		backend.AssertNumberOfCalls(t, "Allow", 1)
	})

	t.Run("open breaker lets requests through the middleware", func(t *testing.T) {
		backend := new(MockLimiter)
		backend.On("Allow", mock.Anything, "client").Return(Decision{}, errors.New("redis down"))

		app := newRateLimitTestApp(NewGuardedLimiter(backend, circuitbreaker.New(circuitbreaker.Config{
			MaxFailures: 1,
			Cooldown:    time.Hour,
		})))

		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/42", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
		backend.AssertNumberOfCalls(t, "Allow", 1)
	})
}
