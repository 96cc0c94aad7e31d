package chat

import (
	"errors"

	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ChatHandler struct {
	service *ChatService
}

func NewChatHandler(service *ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) CreateSession(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid request body"})
	}

	session, err := h.service.CreateSession(userID, req.Title)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to create chat session"})
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		SessionID: session.ID.String(),
		Title:     session.Title,
		CreatedAt: formatTimestamp(session.CreatedAt),
		UpdatedAt: formatTimestamp(session.UpdatedAt),
	})
}

func (h *ChatHandler) ListSessions(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	sessions, err := h.service.ListSessions(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to fetch chat sessions"})
	}

	out := make([]SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, SessionResponse{
			ID:        sessions[i].ID.String(),
			Title:     sessions[i].Title,
			CreatedAt: formatTimestamp(sessions[i].CreatedAt),
			UpdatedAt: formatTimestamp(sessions[i].UpdatedAt),
		})
	}
	return c.JSON(out)
}

func (h *ChatHandler) GetSession(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Chat session not found"})
	}

	session, messages, err := h.service.GetSession(userID, sessionID)
	if err != nil {
		return chatErrorResponse(c, err)
	}

	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, MessageResponse{
			ID:        messages[i].ID.String(),
			Sender:    messages[i].Sender,
			Content:   messages[i].Content,
			Timestamp: formatTimestamp(messages[i].Timestamp),
		})
	}

	return c.JSON(SessionDetailResponse{
		ID:        session.ID.String(),
		Title:     session.Title,
		CreatedAt: formatTimestamp(session.CreatedAt),
		UpdatedAt: formatTimestamp(session.UpdatedAt),
		Messages:  out,
	})
}

func (h *ChatHandler) SaveMessage(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Chat session not found"})
	}

	var req SaveMessageRequest
	if err := c.BodyParser(&req); err != nil || req.Content == "" || req.Sender == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Message content and sender are required"})
	}

	message, err := h.service.SaveMessage(userID, sessionID, req.Sender, req.Content)
	if err != nil {
		return chatErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(MessageResponse{
		ID:        message.ID.String(),
		Sender:    message.Sender,
		Content:   message.Content,
		Timestamp: formatTimestamp(message.Timestamp),
	})
}

func (h *ChatHandler) UpdateTitle(c *fiber.Ctx) error {
	userID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Chat session not found"})
	}

	var req UpdateTitleRequest
	if err := c.BodyParser(&req); err != nil || req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Title is required"})
	}

	if err := h.service.UpdateTitle(userID, sessionID, req.Title); err != nil {
		return chatErrorResponse(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Session title updated successfully"})
}

func chatErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Chat session not found"})
	case errors.Is(err, ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: "Unauthorized access to chat session"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Internal server error"})
}
