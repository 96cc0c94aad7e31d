package auditlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultQueryLimit = 100

type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) CreateLog(userID uuid.UUID, userEmail string, req CreateLogRequest) (*AuditLog, error) {
	entry := AuditLog{
		ID:         uuid.New(),
		UserID:     userID,
		UserEmail:  userEmail,
		Timestamp:  time.Now(),
		ActionType: req.ActionType,
		Location:   req.Location,
		Device:     req.Device,
	}

	if req.Details != nil {
		b, err := json.Marshal(req.Details)
		if err != nil {
			return nil, fmt.Errorf("failed to encode log details: %w", err)
		}
		entry.Details = datatypes.JSON(b)
	}

	if err := s.db.Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// QueryLogs returns the caller's entries newest first, optionally narrowed
// by action type and a timestamp range.
func (s *AuditService) QueryLogs(userID uuid.UUID, filter QueryFilter) ([]AuditLog, error) {
	query := s.db.Scopes(principal.ForUser(userID)).Order("timestamp DESC")

	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("timestamp <= ?", *filter.EndDate)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	var logs []AuditLog
	err := query.Limit(limit).Find(&logs).Error
	return logs, err
}
