package chat

import (
	"errors"
	"time"

	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrNotOwner        = errors.New("unauthorized access to chat session")
)

type ChatService struct {
	db *gorm.DB
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{db: db}
}

func (s *ChatService) CreateSession(userID uuid.UUID, title string) (*ChatSession, error) {
	if title == "" {
		title = defaultTitle
	}
	session := ChatSession{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// ListSessions returns the caller's threads, most recently touched first.
func (s *ChatService) ListSessions(userID uuid.UUID) ([]ChatSession, error) {
	var sessions []ChatSession
	err := s.db.Scopes(principal.ForUser(userID)).
		Order("updated_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (s *ChatService) getOwnedSession(userID, sessionID uuid.UUID) (*ChatSession, error) {
	var session ChatSession
	if err := s.db.First(&session, "id = ?", sessionID).Error; err != nil {
		return nil, ErrSessionNotFound
	}
	if session.UserID != userID {
		return nil, ErrNotOwner
	}
	return &session, nil
}

// GetSession returns the session plus all its messages in send order.
func (s *ChatService) GetSession(userID, sessionID uuid.UUID) (*ChatSession, []ChatMessage, error) {
	session, err := s.getOwnedSession(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	var messages []ChatMessage
	if err := s.db.Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&messages).Error; err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// SaveMessage appends to a session and bumps its updated_at so listings
// float active conversations to the top.
func (s *ChatService) SaveMessage(userID, sessionID uuid.UUID, sender, content string) (*ChatMessage, error) {
	session, err := s.getOwnedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	message := ChatMessage{
		ID:        uuid.New(),
		SessionID: session.ID,
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := s.db.Create(&message).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(session).Update("updated_at", time.Now()).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

func (s *ChatService) UpdateTitle(userID, sessionID uuid.UUID, title string) error {
	session, err := s.getOwnedSession(userID, sessionID)
	if err != nil {
		return err
	}
	return s.db.Model(session).Updates(map[string]interface{}{
		"title":      title,
		"updated_at": time.Now(),
	}).Error
}
