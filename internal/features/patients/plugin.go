package patients

import (
	"github.com/clinicore/clinical-notes-backend/internal/features"
	"github.com/gofiber/fiber/v2"
)

type PatientsFeature struct{}

func New() *PatientsFeature {
	return &PatientsFeature{}
}

func (f *PatientsFeature) ID() string { return "patients" }

func (f *PatientsFeature) Models() []interface{} {
	return []interface{}{
		&Patient{},
		&SessionNote{},
	}
}

func (f *PatientsFeature) RegisterRoutes(router fiber.Router, deps *features.Deps) {
	svc := NewPatientService(deps.DB, deps.Cipher)
	handler := NewPatientHandler(svc)

	router.Post("/patients", handler.Create)
	router.Get("/patients", handler.List)
	router.Get("/patients/:id", handler.Get)
	router.Put("/patients/:id", handler.Update)
	router.Delete("/patients/:id", handler.Delete)

	router.Post("/patients/:id/session-note", handler.SaveSessionNote)
	router.Get("/patients/:id/session-notes", handler.ListSessionNotes)
	router.Get("/session-notes/:id", handler.GetSessionNote)
	router.Put("/session-notes/:id", handler.UpdateSessionNote)
	router.Delete("/session-notes/:id", handler.DeleteSessionNote)
}
