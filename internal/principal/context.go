// Package principal carries the authenticated doctor through a request and
// scopes queries to the records they own.
package principal

import (
	"errors"

	"github.com/clinicore/clinical-notes-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const localsKey = "current_user"

var ErrNoPrincipal = errors.New("no authenticated user in context")

// Set stores the resolved user record in the request locals. Called by the
// authentication middleware after the token's user id is matched against a
// live users row.
func Set(c *fiber.Ctx, user *models.User) {
	c.Locals(localsKey, user)
}

// FromCtx returns the resolved user for the request.
func FromCtx(c *fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals(localsKey).(*models.User)
	if !ok || user == nil {
		return nil, ErrNoPrincipal
	}
	return user, nil
}

// UserID returns the authenticated user's id.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	user, err := FromCtx(c)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}
