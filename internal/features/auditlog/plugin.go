package auditlog

import (
	"github.com/clinicore/clinical-notes-backend/internal/features"
	"github.com/gofiber/fiber/v2"
)

type AuditLogFeature struct{}

func New() *AuditLogFeature {
	return &AuditLogFeature{}
}

func (f *AuditLogFeature) ID() string { return "auditlog" }

func (f *AuditLogFeature) Models() []interface{} {
	return []interface{}{
		&AuditLog{},
	}
}

func (f *AuditLogFeature) RegisterRoutes(router fiber.Router, deps *features.Deps) {
	svc := NewAuditService(deps.DB)
	handler := NewAuditHandler(svc)

	router.Post("/logs", handler.Create)
	router.Get("/logs", handler.List)
}
