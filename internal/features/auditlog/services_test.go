package auditlog_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clinicore/clinical-notes-backend/internal/features/auditlog"
	"github.com/clinicore/clinical-notes-backend/internal/testutil"
)

func newAuditService(t *testing.T) (*auditlog.AuditService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &auditlog.AuditLog{})
	return auditlog.NewAuditService(db), db
}

func TestCreateLog(t *testing.T) {
	svc, _ := newAuditService(t)
	userID := uuid.New()

	entry, err := svc.CreateLog(userID, "doc@example.com", auditlog.CreateLogRequest{
		ActionType: "patient_view",
		Location:   "Berlin",
		Device:     "iPhone",
		Details:    map[string]interface{}{"patient_id": "abc-123"},
	})
	require.NoError(t, err)
	assert.Equal(t, userID, entry.UserID)
	assert.Equal(t, "patient_view", entry.ActionType)
	assert.False(t, entry.Timestamp.IsZero())
	assert.JSONEq(t, `{"patient_id":"abc-123"}`, string(entry.Details))
}

func TestQueryLogs_ScopedToUser(t *testing.T) {
	svc, _ := newAuditService(t)
	alice := uuid.New()
	bob := uuid.New()

	_, err := svc.CreateLog(alice, "alice@example.com", auditlog.CreateLogRequest{ActionType: "login"})
	require.NoError(t, err)
	_, err = svc.CreateLog(bob, "bob@example.com", auditlog.CreateLogRequest{ActionType: "login"})
	require.NoError(t, err)

	logs, err := svc.QueryLogs(alice, auditlog.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, alice, logs[0].UserID)
}

func TestQueryLogs_ActionTypeFilter(t *testing.T) {
	svc, _ := newAuditService(t)
	userID := uuid.New()

	_, err := svc.CreateLog(userID, "doc@example.com", auditlog.CreateLogRequest{ActionType: "login"})
	require.NoError(t, err)
	_, err = svc.CreateLog(userID, "doc@example.com", auditlog.CreateLogRequest{ActionType: "patient_view"})
	require.NoError(t, err)

	logs, err := svc.QueryLogs(userID, auditlog.QueryFilter{ActionType: "login"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "login", logs[0].ActionType)
}

func TestQueryLogs_DateRangeAndOrder(t *testing.T) {
	svc, db := newAuditService(t)
	userID := uuid.New()

	old, err := svc.CreateLog(userID, "doc@example.com", auditlog.CreateLogRequest{ActionType: "login"})
	require.NoError(t, err)
	recent, err := svc.CreateLog(userID, "doc@example.com", auditlog.CreateLogRequest{ActionType: "login"})
	require.NoError(t, err)

	lastWeek := time.Now().Add(-7 * 24 * time.Hour)
	require.NoError(t, db.Model(&auditlog.AuditLog{}).
		Where("id = ?", old.ID).
		Update("timestamp", lastWeek).Error)

	// Newest first with no filter.
	logs, err := svc.QueryLogs(userID, auditlog.QueryFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, recent.ID, logs[0].ID)

	// Range excludes the backdated entry.
	start := time.Now().Add(-24 * time.Hour)
	logs, err = svc.QueryLogs(userID, auditlog.QueryFilter{StartDate: &start})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, recent.ID, logs[0].ID)

	end := time.Now().Add(-48 * time.Hour)
	logs, err = svc.QueryLogs(userID, auditlog.QueryFilter{EndDate: &end})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, old.ID, logs[0].ID)
}

func TestQueryLogs_Limit(t *testing.T) {
	svc, _ := newAuditService(t)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateLog(userID, "doc@example.com", auditlog.CreateLogRequest{ActionType: "login"})
		require.NoError(t, err)
	}

	logs, err := svc.QueryLogs(userID, auditlog.QueryFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
