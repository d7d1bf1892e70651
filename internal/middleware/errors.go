package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/ergo/ergo/api/internal/pkg/errors"
	"github.com/ergo/ergo/api/internal/pkg/metrics"
)

// ErrorHandlerConfig configures the response boundary
type ErrorHandlerConfig struct {
	// Logger instance
	Logger *zap.Logger
	// SentryEnabled reports 5xx responses to Sentry
	SentryEnabled bool
}

// ErrorHandler returns the fiber error handler that turns every error
// returned by a handler or middleware into exactly one wire response.
func ErrorHandler(config ErrorHandlerConfig) fiber.ErrorHandler {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *fiber.Ctx, err error) error {
		resp := apperrors.Translate(err)
		kind := apperrors.KindOf(err)

		metrics.RecordFailure(kind.String(), strconv.Itoa(resp.Status))

		fields := []zap.Field{
			zap.Int("status", resp.Status),
			zap.String("kind", kind.String()),
			zap.Error(err),
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("request_id", GetRequestID(c)),
		}
		if resp.Status >= fiber.StatusInternalServerError {
			logger.Error("request failed", fields...)
		} else {
			logger.Debug("request failed", fields...)
		}

		if config.SentryEnabled && resp.Status >= fiber.StatusInternalServerError {
			CaptureError(c, err)
		}

		// Drop any partially written success body
		c.Response().ResetBody()
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.Status(resp.Status).SendString(resp.Body)
	}
}
