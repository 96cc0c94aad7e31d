package handlers

import (
	"errors"

	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/clinicore/clinical-notes-backend/internal/services"
	"github.com/clinicore/clinical-notes-backend/internal/token"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
	issuer      *token.Issuer
}

func NewAuthHandler(authService *services.AuthService, issuer *token.Issuer) *AuthHandler {
	return &AuthHandler{authService: authService, issuer: issuer}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Missing email or password",
		})
	}

	record, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, services.ErrUserExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Message: "User already exists",
			})
		}
		if errors.Is(err, services.ErrEmailSend) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Message: "Failed to send verification code",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(dto.VerificationResponse{
		Message:        "Verification code sent to your email",
		VerificationID: record.ID.String(),
		Email:          record.Email,
	})
}

func (h *AuthHandler) VerifyRegistration(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Invalid request body",
		})
	}
	if req.VerificationID == "" || req.TOTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Missing verification ID or code",
		})
	}

	user, err := h.authService.VerifyRegistration(req.VerificationID, req.TOTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid verification ID",
			})
		case errors.Is(err, services.ErrVerificationExpired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Verification code has expired",
			})
		case errors.Is(err, services.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid verification code",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.RegistrationCompleteResponse{
		Message: "User registered successfully",
		UserID:  user.ID.String(),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Invalid request body",
		})
	}
	if req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Missing email or password",
		})
	}

	record, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "Invalid credentials",
			})
		}
		if errors.Is(err, services.ErrEmailSend) {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Message: "Failed to send verification code",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(dto.VerificationResponse{
		Message:        "Verification code sent to your email",
		VerificationID: record.ID.String(),
		Email:          record.Email,
	})
}

func (h *AuthHandler) VerifyLogin(c *fiber.Ctx) error {
	var req dto.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Invalid request body",
		})
	}
	if req.VerificationID == "" || req.TOTP == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Missing verification ID or code",
		})
	}

	user, signed, err := h.authService.VerifyLogin(req.VerificationID, req.TOTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid verification ID",
			})
		case errors.Is(err, services.ErrVerificationExpired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Verification code has expired",
			})
		case errors.Is(err, services.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid verification code",
			})
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Message: "User not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(dto.LoginCompleteResponse{
		Token: signed,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	})
}

func (h *AuthHandler) ResendTOTP(c *fiber.Ctx) error {
	var req dto.ResendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Invalid request body",
		})
	}
	if req.VerificationID == "" || req.Type == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Message: "Missing verification ID or type",
		})
	}

	email, err := h.authService.Resend(req.VerificationID, req.Type)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrVerificationNotFound), errors.Is(err, services.ErrUnknownFlow):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Message: "Invalid verification ID",
			})
		case errors.Is(err, services.ErrEmailSend):
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Message: "Failed to send verification code",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(dto.VerificationResponse{
		Message:        "New verification code sent to your email",
		VerificationID: req.VerificationID,
		Email:          email,
	})
}

// RefreshToken reissues a full-window token for the already-authenticated
// caller.
func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	user, err := principal.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Message: "Token is missing!",
		})
	}

	signed, err := h.issuer.Issue(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(dto.TokenResponse{
		Token:   signed,
		Message: "Token refreshed successfully",
	})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := principal.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Message: "Token is missing!",
		})
	}

	return c.JSON(dto.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
}
