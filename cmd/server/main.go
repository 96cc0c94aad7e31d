package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/crypto"
	"github.com/clinicore/clinical-notes-backend/internal/database"
	"github.com/clinicore/clinical-notes-backend/internal/features"
	"github.com/clinicore/clinical-notes-backend/internal/features/auditlog"
	"github.com/clinicore/clinical-notes-backend/internal/features/chat"
	"github.com/clinicore/clinical-notes-backend/internal/features/patients"
	"github.com/clinicore/clinical-notes-backend/internal/handlers"
	"github.com/clinicore/clinical-notes-backend/internal/logging"
	"github.com/clinicore/clinical-notes-backend/internal/mailer"
	"github.com/clinicore/clinical-notes-backend/internal/middleware"
	"github.com/clinicore/clinical-notes-backend/internal/routes"
	"github.com/clinicore/clinical-notes-backend/internal/services"
	"github.com/clinicore/clinical-notes-backend/internal/token"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	cleanupVerifications := flag.Bool("cleanup-verifications", false,
		"delete expired verification records and exit (for cron use)")
	flag.Parse()

	// Structured logging (JSON to stdout)
	logging.Setup()

	// .env is optional; real deployments configure via the environment.
	_ = godotenv.Load()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.EncryptionKey == "" {
		slog.Error("ENCRYPTION_KEY environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	if err := database.MigrateShared(); err != nil {
		slog.Error("shared migration failed", "error", err)
		os.Exit(1)
	}

	// Services shared across the app
	issuer := token.NewIssuer(cfg)
	cipher := crypto.NewFieldCipher(cfg)

	smtp, err := mailer.NewSMTPMailer(cfg)
	if err != nil {
		slog.Error("mailer configuration invalid", "error", err)
		os.Exit(1)
	}

	authService := services.NewAuthService(database.DB, cfg, smtp, issuer)

	// Maintenance mode: sweep expired verification records and exit.
	// Expired records otherwise linger until a verify attempt rejects them.
	if *cleanupVerifications {
		removed, err := authService.CleanupExpiredVerifications()
		if err != nil {
			slog.Error("verification cleanup failed", "error", err)
			os.Exit(1)
		}
		slog.Info("verification cleanup completed", "removed", removed)
		return
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		dbLogHandler,
	)))

	// System log retention
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Feature modules
	featureList := []features.Feature{
		patients.New(),
		chat.New(),
		auditlog.New(),
	}

	var featureModels []interface{}
	for _, f := range featureList {
		models := f.Models()
		if err := database.MigrateModels(database.DB, models); err != nil {
			slog.Error("feature migration failed", "feature", f.ID(), "error", err)
			os.Exit(1)
		}
		featureModels = append(featureModels, models...)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, issuer)
	healthHandler := handlers.NewHealthHandler()
	adminHandler := handlers.NewAdminHandler(database.DB, featureModels)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	deps := &features.Deps{DB: database.DB, Cfg: cfg, Cipher: cipher}
	routes.Setup(app, cfg, database.DB, authHandler, healthHandler, adminHandler, deps, featureList)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"message": message,
	})
}
