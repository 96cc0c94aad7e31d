package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyRequest struct {
	VerificationID string `json:"verification_id"`
	TOTP           string `json:"totp"`
}

type ResendRequest struct {
	VerificationID string `json:"verification_id"`
	Type           string `json:"type"` // "registration" or "login"
}

// VerificationResponse is returned whenever a code has been dispatched and
// the caller must come back with it.
type VerificationResponse struct {
	Message        string `json:"message"`
	VerificationID string `json:"verification_id"`
	Email          string `json:"email"`
}

type RegistrationCompleteResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type LoginCompleteResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type TokenResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse carries the human message plus an optional machine-readable
// code; today only token expiry sets one, so clients can try a refresh
// instead of forcing a full re-login.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
