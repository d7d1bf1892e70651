package middleware

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/ergo/ergo/api/internal/pkg/errors"
)

// sentryHubKey is the locals key holding the per-request hub
const sentryHubKey = "sentry_hub"

// SentryOptions configures error reporting
type SentryOptions struct {
	DSN              string
	Environment      string
	Release          string
	Debug            bool
	SampleRate       float64
	TracesSampleRate float64
}

// InitSentry initializes the Sentry SDK. An empty DSN leaves it disabled.
func InitSentry(opts SentryOptions) error {
	if opts.DSN == "" {
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		Debug:            opts.Debug,
		SampleRate:       opts.SampleRate,
		TracesSampleRate: opts.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}
	return nil
}

// FlushSentry waits up to timeout for buffered events
func FlushSentry(timeout time.Duration) {
	sentry.Flush(timeout)
}

// SentryMiddleware attaches a request-scoped hub to every request
func SentryMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(sentryHubKey, newRequestHub(c))
		return c.Next()
	}
}

// CaptureError reports err on the request hub
func CaptureError(c *fiber.Ctx, err error) {
	hub := requestHub(c)
	hub.Scope().SetTag("kind", apperrors.KindOf(err).String())
	hub.Scope().SetTag("route", RoutePathNormalizer(c))
	hub.CaptureException(err)
}

// requestHub returns the hub stored by SentryMiddleware, or a new clone when
// the request never reached it. The global hub's scope is never modified.
func requestHub(c *fiber.Ctx) *sentry.Hub {
	if hub, ok := c.Locals(sentryHubKey).(*sentry.Hub); ok && hub != nil {
		return hub
	}
	hub := newRequestHub(c)
	c.Locals(sentryHubKey, hub)
	return hub
}

func newRequestHub(c *fiber.Ctx) *sentry.Hub {
	hub := sentry.CurrentHub().Clone()
	scope := hub.Scope()
	scope.SetTag("request_id", GetRequestID(c))
	// Headers and body are left out; they may carry credentials or user data
	scope.SetContext("request", sentry.Context{
		"method": c.Method(),
		"path":   c.Path(),
		"ip":     c.IP(),
	})
	return hub
}
