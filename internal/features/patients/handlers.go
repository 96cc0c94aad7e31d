package patients

import (
	"errors"

	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PatientHandler struct {
	service *PatientService
}

func NewPatientHandler(service *PatientService) *PatientHandler {
	return &PatientHandler{service: service}
}

func patientResponse(p *Patient) PatientResponse {
	return PatientResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Age:       p.Age,
		Gender:    p.Gender,
		Notes:     p.Notes,
		DoctorID:  p.DoctorID.String(),
		CreatedAt: formatTimestamp(p.CreatedAt),
		UpdatedAt: formatTimestamp(p.UpdatedAt),
	}
}

func (h *PatientHandler) Create(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	var req CreatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid request body"})
	}
	if req.Name == "" || req.Age == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Patient name and age are required"})
	}

	patient, err := h.service.CreatePatient(doctorID, req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to add patient"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Patient added successfully",
		"patient_id": patient.ID.String(),
	})
}

func (h *PatientHandler) List(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	rows, err := h.service.ListPatients(doctorID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to fetch patients"})
	}

	out := make([]PatientResponse, 0, len(rows))
	for i := range rows {
		out = append(out, patientResponse(&rows[i]))
	}
	return c.JSON(PatientListResponse{Patients: out, Count: len(out)})
}

func (h *PatientHandler) Get(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Patient not found"})
	}

	patient, err := h.service.GetPatient(doctorID, patientID)
	if err != nil {
		return patientErrorResponse(c, err)
	}
	return c.JSON(patientResponse(patient))
}

func (h *PatientHandler) Update(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Patient not found"})
	}

	var req UpdatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "No data provided"})
	}

	if err := h.service.UpdatePatient(doctorID, patientID, req); err != nil {
		return patientErrorResponse(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Patient updated successfully"})
}

func (h *PatientHandler) Delete(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Patient not found"})
	}

	if err := h.service.DeletePatient(doctorID, patientID); err != nil {
		return patientErrorResponse(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Patient deleted successfully"})
}

func (h *PatientHandler) SaveSessionNote(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Patient not found"})
	}

	var req CreateSessionNoteRequest
	if err := c.BodyParser(&req); err != nil || req.Note == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Session note is required"})
	}

	note, err := h.service.SaveSessionNote(doctorID, patientID, req.Note)
	if err != nil {
		return patientErrorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Session note saved successfully",
		"session_id": note.ID.String(),
	})
}

func (h *PatientHandler) ListSessionNotes(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	patientID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Patient not found"})
	}

	notes, err := h.service.ListSessionNotes(doctorID, patientID)
	if err != nil {
		return patientErrorResponse(c, err)
	}

	items := make([]SessionNoteListItem, 0, len(notes))
	for i := range notes {
		items = append(items, SessionNoteListItem{
			SessionID: notes[i].ID.String(),
			CreatedAt: formatTimestamp(notes[i].CreatedAt),
		})
	}
	return c.JSON(SessionNoteListResponse{SessionNotes: items, Count: len(items)})
}

func (h *PatientHandler) GetSessionNote(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	noteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Session note not found"})
	}

	note, err := h.service.GetSessionNote(doctorID, noteID)
	if err != nil {
		return sessionNoteErrorResponse(c, err)
	}

	return c.JSON(SessionNoteResponse{
		SessionID: note.ID.String(),
		PatientID: note.PatientID.String(),
		DoctorID:  note.DoctorID.String(),
		Note:      note.Note,
		CreatedAt: formatTimestamp(note.CreatedAt),
	})
}

func (h *PatientHandler) UpdateSessionNote(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	noteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Session note not found"})
	}

	var req CreateSessionNoteRequest
	if err := c.BodyParser(&req); err != nil || req.Note == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Session note is required"})
	}

	if err := h.service.UpdateSessionNote(doctorID, noteID, req.Note); err != nil {
		return sessionNoteErrorResponse(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Session note updated successfully"})
}

func (h *PatientHandler) DeleteSessionNote(c *fiber.Ctx) error {
	doctorID, err := principal.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	noteID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Session note not found"})
	}

	if err := h.service.DeleteSessionNote(doctorID, noteID); err != nil {
		return sessionNoteErrorResponse(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Session note deleted successfully"})
}

func patientErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrPatientNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Patient not found"})
	case errors.Is(err, ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: "Unauthorized access to patient record"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Internal server error"})
}

func sessionNoteErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNoteNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Message: "Session note not found"})
	case errors.Is(err, ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Message: "Unauthorized access to session note"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Internal server error"})
}
