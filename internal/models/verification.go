package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VerificationToken is a pending registration: the one-time code plus the
// full not-yet-persisted user payload (including the password hash). The
// users row is only written once the code is confirmed.
type VerificationToken struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"not null;size:255;index" json:"email"`
	OTP       string         `gorm:"not null;size:6" json:"-"`
	UserData  datatypes.JSON `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `gorm:"not null;index" json:"expires_at"`
}

// LoginVerification is a pending second-factor login for an existing user.
type LoginVerification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Email     string    `gorm:"not null;size:255" json:"email"`
	OTP       string    `gorm:"not null;size:6" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
}

// Expired reports whether the verification window has closed.
func (v *VerificationToken) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

func (v *LoginVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// PendingUser is the registration payload serialized into
// VerificationToken.UserData.
type PendingUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Verified bool   `json:"verified"`
}
