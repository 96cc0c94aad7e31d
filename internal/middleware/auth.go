package middleware

import (
	"errors"
	"strings"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/clinicore/clinical-notes-backend/internal/models"
	"github.com/clinicore/clinical-notes-backend/internal/principal"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// JWTProtected validates the bearer token on protected routes. Expiry gets
// its own machine-readable code so clients can attempt a refresh; every
// other decode failure collapses into a generic invalid-token response that
// carries the underlying error text.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			auth := c.Get(fiber.HeaderAuthorization)
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Message: "Token is missing!",
				})
			}
			if errors.Is(err, jwt.ErrTokenExpired) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
					Message: "Token has expired!",
					Code:    "TOKEN_EXPIRED",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Token is invalid! " + err.Error(),
			})
		},
	})
}

// ResolveUser maps the verified token back onto a live users row and stores
// the principal for downstream handlers. A cryptographically valid token for
// a deleted user still fails here: removing the row is the only revocation
// mechanism this design has.
func ResolveUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		parsed, ok := c.Locals("user").(*jwt.Token)
		if !ok || parsed == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Token is missing!",
			})
		}

		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Token is invalid! missing claims",
			})
		}

		sub, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(sub)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Token is invalid! " + err.Error(),
			})
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "User not found!",
			})
		}

		principal.Set(c, &user)
		return c.Next()
	}
}
