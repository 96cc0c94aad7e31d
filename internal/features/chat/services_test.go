package chat_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clinicore/clinical-notes-backend/internal/features/chat"
	"github.com/clinicore/clinical-notes-backend/internal/testutil"
)

func newChatService(t *testing.T) (*chat.ChatService, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t, &chat.ChatSession{}, &chat.ChatMessage{})
	return chat.NewChatService(db), db
}

func TestCreateSession_DefaultTitle(t *testing.T) {
	svc, _ := newChatService(t)
	userID := uuid.New()

	session, err := svc.CreateSession(userID, "")
	require.NoError(t, err)
	assert.Equal(t, "New Conversation", session.Title)

	named, err := svc.CreateSession(userID, "Intake discussion")
	require.NoError(t, err)
	assert.Equal(t, "Intake discussion", named.Title)
}

func TestListSessions_ScopedAndOrdered(t *testing.T) {
	svc, db := newChatService(t)
	alice := uuid.New()
	bob := uuid.New()

	older, err := svc.CreateSession(alice, "older")
	require.NoError(t, err)
	newer, err := svc.CreateSession(alice, "newer")
	require.NoError(t, err)
	_, err = svc.CreateSession(bob, "not mine")
	require.NoError(t, err)

	// Most recently touched first; force distinct updated_at values.
	require.NoError(t, db.Model(&chat.ChatSession{}).
		Where("id = ?", older.ID).
		Update("updated_at", newer.UpdatedAt.Add(-time.Minute)).Error)

	sessions, err := svc.ListSessions(alice)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, newer.ID, sessions[0].ID)
	assert.Equal(t, older.ID, sessions[1].ID)
}

func TestGetSession_Ownership(t *testing.T) {
	svc, _ := newChatService(t)
	owner := uuid.New()

	session, err := svc.CreateSession(owner, "private")
	require.NoError(t, err)

	_, _, err = svc.GetSession(uuid.New(), session.ID)
	assert.ErrorIs(t, err, chat.ErrNotOwner)

	_, _, err = svc.GetSession(owner, uuid.New())
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestSaveMessage_AppendsInOrder(t *testing.T) {
	svc, _ := newChatService(t)
	userID := uuid.New()

	session, err := svc.CreateSession(userID, "")
	require.NoError(t, err)

	_, err = svc.SaveMessage(userID, session.ID, "user", "hello")
	require.NoError(t, err)
	_, err = svc.SaveMessage(userID, session.ID, "assistant", "hi, how can I help?")
	require.NoError(t, err)

	_, messages, err := svc.GetSession(userID, session.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "user", messages[0].Sender)
	assert.Equal(t, "hello", messages[0].Content)
	assert.Equal(t, "assistant", messages[1].Sender)
}

func TestSaveMessage_BumpsSessionActivity(t *testing.T) {
	svc, db := newChatService(t)
	userID := uuid.New()

	first, err := svc.CreateSession(userID, "first")
	require.NoError(t, err)
	second, err := svc.CreateSession(userID, "second")
	require.NoError(t, err)

	// Push both into the past, then touch the first.
	past := time.Now().Add(-time.Hour)
	require.NoError(t, db.Model(&chat.ChatSession{}).
		Where("id IN ?", []uuid.UUID{first.ID, second.ID}).
		Update("updated_at", past).Error)

	_, err = svc.SaveMessage(userID, first.ID, "user", "still here")
	require.NoError(t, err)

	sessions, err := svc.ListSessions(userID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first.ID, sessions[0].ID)
}

func TestSaveMessage_Ownership(t *testing.T) {
	svc, _ := newChatService(t)
	owner := uuid.New()

	session, err := svc.CreateSession(owner, "")
	require.NoError(t, err)

	_, err = svc.SaveMessage(uuid.New(), session.ID, "user", "intrusion")
	assert.ErrorIs(t, err, chat.ErrNotOwner)
}

func TestUpdateTitle(t *testing.T) {
	svc, _ := newChatService(t)
	owner := uuid.New()

	session, err := svc.CreateSession(owner, "")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateTitle(owner, session.ID, "Renamed thread"))

	fetched, _, err := svc.GetSession(owner, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed thread", fetched.Title)

	assert.ErrorIs(t, svc.UpdateTitle(uuid.New(), session.ID, "nope"), chat.ErrNotOwner)
}
