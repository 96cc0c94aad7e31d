// Package features defines the contract for the record-keeping areas of the
// service (patients, chat threads, audit logs). Each area owns its models,
// service layer, and route registration.
package features

import (
	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/crypto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries the shared services a feature may need.
type Deps struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Cipher *crypto.FieldCipher
}

// Feature is implemented by every record-keeping area.
type Feature interface {
	// ID returns the unique feature identifier.
	ID() string

	// Models returns the GORM model pointers for AutoMigrate.
	Models() []interface{}

	// RegisterRoutes mounts the feature routes on the given Fiber group.
	// The group is already prefixed with /api and carries the bearer-token
	// middleware, so every handler can rely on a resolved principal.
	RegisterRoutes(router fiber.Router, deps *Deps)
}
