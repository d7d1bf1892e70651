package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ergo/ergo/api/internal/domain"
	"github.com/ergo/ergo/api/internal/service"
)

// CounterHandler serves the counter operations
type CounterHandler struct {
	counterService *service.CounterService
}

// NewCounterHandler creates a new counter handler
func NewCounterHandler(counterService *service.CounterService) *CounterHandler {
	return &CounterHandler{
		counterService: counterService,
	}
}

// Handle returns the handler for POST /42 and POST /1337.
// Failures are returned to the app error handler untouched.
func (h *CounterHandler) Handle(op domain.Operation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, err := readBody(c)
		if err != nil {
			return err
		}

		counter, err := h.counterService.Handle(c.UserContext(), op, body)
		if err != nil {
			return err
		}

		encoder := h.counterService.Encoder()
		c.Set(fiber.HeaderContentType, encoder.ContentType())
		return c.Status(fiber.StatusOK).Send(encoder.Encode(counter))
	}
}

// RegisterRoutes registers one POST route per operation. legacyGet also
// binds the superseded GET-with-body form.
func (h *CounterHandler) RegisterRoutes(router fiber.Router, legacyGet bool) {
	for _, op := range domain.Operations {
		router.Post(op.Path(), h.Handle(op))
		if legacyGet {
			router.Get(op.Path(), h.Handle(op))
		}
	}
}
