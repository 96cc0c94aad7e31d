package routes

import (
	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/features"
	"github.com/clinicore/clinical-notes-backend/internal/handlers"
	"github.com/clinicore/clinical-notes-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Setup mounts every route under /api. No rate limiting is applied,
// including on the OTP endpoints.
func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
	deps *features.Deps,
	featureList []features.Feature,
) {
	api := app.Group("/api")

	api.Get("/health", healthHandler.Check)

	// Auth — public.
	api.Post("/register", authHandler.Register)
	api.Post("/verify-registration", authHandler.VerifyRegistration)
	api.Post("/login", authHandler.Login)
	api.Post("/verify-login", authHandler.VerifyLogin)
	api.Post("/resend-totp", authHandler.ResendTOTP)

	// Bootstrap — shared-secret header, no bearer token.
	api.Post("/init-db", middleware.AdminSecret(cfg), adminHandler.InitDB)

	// Everything below requires a valid bearer token resolved to a live
	// user row.
	protected := api.Group("", middleware.JWTProtected(cfg), middleware.ResolveUser(db))
	protected.Post("/refresh-token", authHandler.RefreshToken)
	protected.Get("/user", authHandler.Profile)

	for _, f := range featureList {
		f.RegisterRoutes(protected, deps)
	}
}
