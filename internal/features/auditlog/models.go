package auditlog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is a user-facing activity entry (login, patient_view, ...),
// written by clients and queried back per user.
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	UserEmail  string         `gorm:"size:255" json:"user_email"`
	Timestamp  time.Time      `gorm:"not null;index" json:"timestamp"`
	ActionType string         `gorm:"size:100;not null;index" json:"action_type"`
	Location   string         `gorm:"size:255" json:"location"`
	Device     string         `gorm:"size:255" json:"device"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
}

// --- DTOs ---

type CreateLogRequest struct {
	ActionType string                 `json:"action_type"`
	Location   string                 `json:"location"`
	Device     string                 `json:"device"`
	Details    map[string]interface{} `json:"details"`
}

// QueryFilter narrows the per-user log listing.
type QueryFilter struct {
	ActionType string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

type LogResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	UserEmail  string         `json:"user_email"`
	Timestamp  string         `json:"timestamp"`
	ActionType string         `json:"action_type"`
	Location   string         `json:"location"`
	Device     string         `json:"device"`
	Details    datatypes.JSON `json:"details,omitempty"`
}

type LogListResponse struct {
	Logs  []LogResponse `json:"logs"`
	Count int           `json:"count"`
}
