package middleware

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/ergo/ergo/api/internal/pkg/errors"
)

// RecoverWithSentry converts panics into transport errors for the error
// handler, reporting them to Sentry when enabled.
func RecoverWithSentry(logger *zap.Logger, sentryEnabled bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			panicErr, ok := r.(error)
			if !ok {
				panicErr = fmt.Errorf("%v", r)
			}
			stack := debug.Stack()

			logger.Error("panic recovered",
				zap.Error(panicErr),
				zap.String("request_id", GetRequestID(c)),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.ByteString("stack", stack),
			)

			if sentryEnabled {
				hub := requestHub(c)
				hub.Scope().SetLevel(sentry.LevelFatal)
				hub.Scope().SetExtra("stack", string(stack))
				if eventID := hub.RecoverWithContext(c.UserContext(), r); eventID != nil {
					logger.Info("panic reported to Sentry", zap.String("event_id", string(*eventID)))
				}
				hub.Flush(2 * time.Second)
			}

			err = apperrors.Transport(fiber.StatusInternalServerError, "Internal Server Error").WithError(panicErr)
		}()

		return c.Next()
	}
}
