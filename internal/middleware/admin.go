package middleware

import (
	"crypto/subtle"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// AdminSecret guards bootstrap endpoints with the shared Admin-Secret
// header. An unset secret means the endpoint is closed.
func AdminSecret(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := cfg.AdminSecret
		provided := c.Get("Admin-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Unauthorized",
			})
		}
		return c.Next()
	}
}
