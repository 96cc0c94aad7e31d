package chat

import (
	"github.com/clinicore/clinical-notes-backend/internal/features"
	"github.com/gofiber/fiber/v2"
)

type ChatFeature struct{}

func New() *ChatFeature {
	return &ChatFeature{}
}

func (f *ChatFeature) ID() string { return "chat" }

func (f *ChatFeature) Models() []interface{} {
	return []interface{}{
		&ChatSession{},
		&ChatMessage{},
	}
}

func (f *ChatFeature) RegisterRoutes(router fiber.Router, deps *features.Deps) {
	svc := NewChatService(deps.DB)
	handler := NewChatHandler(svc)

	router.Post("/chat/sessions", handler.CreateSession)
	router.Get("/chat/sessions", handler.ListSessions)
	router.Get("/chat/sessions/:id", handler.GetSession)
	router.Put("/chat/sessions/:id", handler.UpdateTitle)
	router.Post("/chat/sessions/:id/messages", handler.SaveMessage)
}
