package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// MaxUpload is a Fiber middleware that rejects requests whose declared
// Content-Length exceeds limit, before the body is read. Requests without a
// Content-Length still hit Fiber's global body limit.
func MaxUpload(limit int64) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limit > 0 && int64(c.Request().Header.ContentLength()) > limit {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Uploaded file is too large",
			})
		}
		return c.Next()
	}
}
