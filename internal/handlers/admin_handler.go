package handlers

import (
	"log/slog"

	"github.com/clinicore/clinical-notes-backend/internal/database"
	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AdminHandler hosts bootstrap operations guarded by the Admin-Secret
// header.
type AdminHandler struct {
	db            *gorm.DB
	featureModels []interface{}
}

func NewAdminHandler(db *gorm.DB, featureModels []interface{}) *AdminHandler {
	return &AdminHandler{db: db, featureModels: featureModels}
}

// InitDB creates every collection the service uses. Safe to re-run;
// AutoMigrate is additive.
func (h *AdminHandler) InitDB(c *fiber.Ctx) error {
	if err := database.MigrateSharedOn(h.db); err != nil {
		slog.Error("init-db shared migration failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Database initialization failed",
		})
	}
	if err := database.MigrateModels(h.db, h.featureModels); err != nil {
		slog.Error("init-db feature migration failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Database initialization failed",
		})
	}

	return c.JSON(dto.MessageResponse{
		Message: "Database initialized successfully",
	})
}
