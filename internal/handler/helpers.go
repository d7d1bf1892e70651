package handler

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// readBody returns the request body with any Content-Encoding removed.
// Decompression failures are transport errors.
func readBody(c *fiber.Ctx) ([]byte, error) {
	body, err := c.Request().BodyUncompressed()
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}
