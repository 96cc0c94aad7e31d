package principal

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OwnedBy returns a GORM scope that filters rows to a doctor's own records.
func OwnedBy(doctorID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("doctor_id = ?", doctorID)
	}
}

// ForUser is OwnedBy for collections keyed by user_id (chat sessions,
// audit logs).
func ForUser(userID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}
