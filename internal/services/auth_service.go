package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/clinicore/clinical-notes-backend/internal/config"
	"github.com/clinicore/clinical-notes-backend/internal/mailer"
	"github.com/clinicore/clinical-notes-backend/internal/models"
	"github.com/clinicore/clinical-notes-backend/internal/token"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrVerificationNotFound = errors.New("invalid verification ID")
	ErrVerificationExpired  = errors.New("verification code has expired")
	ErrInvalidCode          = errors.New("invalid verification code")
	ErrEmailSend            = errors.New("failed to send verification code")
	ErrUnknownFlow          = errors.New("verification type must be registration or login")
)

const (
	otpLength = 6
	otpWindow = 10 * time.Minute

	FlowRegistration = "registration"
	FlowLogin        = "login"
)

// AuthService runs the registration and login verification flows: it issues
// one-time codes, validates them against their stored absolute expiry, and
// hands successful logins to the token issuer.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mail   mailer.Mailer
	issuer *token.Issuer
}

func NewAuthService(db *gorm.DB, cfg *config.Config, mail mailer.Mailer, issuer *token.Issuer) *AuthService {
	return &AuthService{db: db, cfg: cfg, mail: mail, issuer: issuer}
}

// Register starts the registration flow. No users row is written here; the
// whole would-be user travels inside the verification record until the code
// is confirmed. The record is persisted even when dispatch fails, though the
// caller only learns the verification id on success.
func (s *AuthService) Register(email, password, name string) (*models.VerificationToken, error) {
	var existing models.User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	pending := models.PendingUser{
		Email:    email,
		Password: string(hash),
		Name:     name,
		Role:     "doctor",
		Verified: false,
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pending user: %w", err)
	}

	otp := generateTOTP()
	sendErr := s.mail.SendVerificationCode(email, otp)

	now := time.Now()
	record := models.VerificationToken{
		ID:        uuid.New(),
		Email:     email,
		OTP:       otp,
		UserData:  payload,
		CreatedAt: now,
		ExpiresAt: now.Add(otpWindow),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store verification: %w", err)
	}

	if sendErr != nil {
		slog.Error("verification email dispatch failed", "email", email, "error", sendErr)
		return nil, fmt.Errorf("%w: %v", ErrEmailSend, sendErr)
	}
	return &record, nil
}

// VerifyRegistration consumes a registration verification: on a matching,
// unexpired code the pending payload is materialized into a verified user and
// the record deleted.
func (s *AuthService) VerifyRegistration(verificationID, otp string) (*models.User, error) {
	id, err := uuid.Parse(verificationID)
	if err != nil {
		return nil, ErrVerificationNotFound
	}

	var record models.VerificationToken
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, ErrVerificationNotFound
	}

	if record.Expired(time.Now()) {
		return nil, ErrVerificationExpired
	}
	if record.OTP != otp {
		return nil, ErrInvalidCode
	}

	var pending models.PendingUser
	if err := json.Unmarshal(record.UserData, &pending); err != nil {
		return nil, fmt.Errorf("failed to decode pending user: %w", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Email:    pending.Email,
		Password: pending.Password,
		Name:     pending.Name,
		Role:     pending.Role,
		Verified: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Single use: the consumed record goes away before the caller sees
	// success.
	if err := s.db.Delete(&record).Error; err != nil {
		slog.Error("failed to delete consumed verification", "id", record.ID, "error", err)
	}

	return &user, nil
}

// Login checks credentials and starts the login verification flow. The
// pending record is written before dispatch, so a failed email leaves an
// orphaned record for the cleanup sweep.
func (s *AuthService) Login(email, password string) (*models.LoginVerification, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	record := models.LoginVerification{
		ID:        uuid.New(),
		UserID:    user.ID,
		Email:     user.Email,
		OTP:       generateTOTP(),
		CreatedAt: now,
		ExpiresAt: now.Add(otpWindow),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store login verification: %w", err)
	}

	if err := s.mail.SendVerificationCode(user.Email, record.OTP); err != nil {
		slog.Error("login email dispatch failed", "email", user.Email, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEmailSend, err)
	}
	return &record, nil
}

// VerifyLogin consumes a login verification and issues a bearer token for
// the user it points at. A user deleted between login and verify fails with
// ErrUserNotFound even though the code is right.
func (s *AuthService) VerifyLogin(verificationID, otp string) (*models.User, string, error) {
	id, err := uuid.Parse(verificationID)
	if err != nil {
		return nil, "", ErrVerificationNotFound
	}

	var record models.LoginVerification
	if err := s.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, "", ErrVerificationNotFound
	}

	if record.Expired(time.Now()) {
		return nil, "", ErrVerificationExpired
	}
	if record.OTP != otp {
		return nil, "", ErrInvalidCode
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", record.UserID).Error; err != nil {
		return nil, "", ErrUserNotFound
	}

	signed, err := s.issuer.Issue(&user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %w", err)
	}

	if err := s.db.Delete(&record).Error; err != nil {
		slog.Error("failed to delete consumed login verification", "id", record.ID, "error", err)
	}

	return &user, signed, nil
}

// Resend regenerates the code for an existing verification in place: same
// record id, fresh code, fresh 10-minute window. The previous code stops
// verifying the moment the update lands. Holding the record id is the only
// requirement; the flow is deliberately unauthenticated.
func (s *AuthService) Resend(verificationID, flow string) (string, error) {
	id, err := uuid.Parse(verificationID)
	if err != nil {
		return "", ErrVerificationNotFound
	}

	var email string
	otp := generateTOTP()
	now := time.Now()
	refresh := map[string]interface{}{
		"otp":        otp,
		"created_at": now,
		"expires_at": now.Add(otpWindow),
	}

	switch flow {
	case FlowRegistration:
		var record models.VerificationToken
		if err := s.db.First(&record, "id = ?", id).Error; err != nil {
			return "", ErrVerificationNotFound
		}
		if err := s.db.Model(&record).Updates(refresh).Error; err != nil {
			return "", fmt.Errorf("failed to refresh verification: %w", err)
		}
		email = record.Email
	case FlowLogin:
		var record models.LoginVerification
		if err := s.db.First(&record, "id = ?", id).Error; err != nil {
			return "", ErrVerificationNotFound
		}
		if err := s.db.Model(&record).Updates(refresh).Error; err != nil {
			return "", fmt.Errorf("failed to refresh verification: %w", err)
		}
		email = record.Email
	default:
		return "", ErrUnknownFlow
	}

	if err := s.mail.SendVerificationCode(email, otp); err != nil {
		slog.Error("resend email dispatch failed", "email", email, "error", err)
		return "", fmt.Errorf("%w: %v", ErrEmailSend, err)
	}
	return email, nil
}

// CleanupExpiredVerifications sweeps both verification collections for
// records past their expiry. It is never called from a request path; the
// server binary exposes it behind a flag for cron or manual use. Each delete
// is independent, so a partial sweep is fine.
func (s *AuthService) CleanupExpiredVerifications() (int64, error) {
	now := time.Now()
	var removed int64

	reg := s.db.Where("expires_at < ?", now).Delete(&models.VerificationToken{})
	if reg.Error != nil {
		return removed, fmt.Errorf("registration sweep: %w", reg.Error)
	}
	removed += reg.RowsAffected

	login := s.db.Where("expires_at < ?", now).Delete(&models.LoginVerification{})
	if login.Error != nil {
		return removed, fmt.Errorf("login sweep: %w", login.Error)
	}
	removed += login.RowsAffected

	return removed, nil
}

// generateTOTP returns a 6-digit decimal code, each digit uniform over 0-9.
// The name is historical; the code is random, not time-based, and stays
// valid until its stored expiry.
func generateTOTP() string {
	digits := make([]byte, otpLength)
	for i := range digits {
		digits[i] = byte('0' + rand.Intn(10))
	}
	return string(digits)
}
