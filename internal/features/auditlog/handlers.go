package auditlog

import (
	"strconv"
	"time"

	"github.com/clinicore/clinical-notes-backend/internal/dto"
	"github.com/clinicore/clinical-notes-backend/internal/principal"
	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	service *AuditService
}

func NewAuditHandler(service *AuditService) *AuditHandler {
	return &AuditHandler{service: service}
}

func (h *AuditHandler) Create(c *fiber.Ctx) error {
	user, err := principal.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	var req CreateLogRequest
	if err := c.BodyParser(&req); err != nil || req.ActionType == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Missing required fields"})
	}

	entry, err := h.service.CreateLog(user.ID, user.Email, req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to create audit log"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Audit log created successfully",
		"log_id":  entry.ID.String(),
	})
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	user, err := principal.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Message: "Token is missing!"})
	}

	filter := QueryFilter{
		ActionType: c.Query("action_type"),
		Limit:      defaultQueryLimit,
	}

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := parseISODate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid start_date format"})
		}
		filter.StartDate = &parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := parseISODate(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid end_date format"})
		}
		filter.EndDate = &parsed
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Message: "Invalid limit parameter"})
		}
		filter.Limit = limit
	}

	logs, err := h.service.QueryLogs(user.ID, filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Message: "Failed to fetch audit logs"})
	}

	out := make([]LogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, LogResponse{
			ID:         logs[i].ID.String(),
			UserID:     logs[i].UserID.String(),
			UserEmail:  logs[i].UserEmail,
			Timestamp:  logs[i].Timestamp.Format(time.RFC3339),
			ActionType: logs[i].ActionType,
			Location:   logs[i].Location,
			Device:     logs[i].Device,
			Details:    logs[i].Details,
		})
	}
	return c.JSON(LogListResponse{Logs: out, Count: len(out)})
}

// parseISODate accepts full RFC3339 timestamps or bare dates, matching the
// ISO formats clients send.
func parseISODate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05", raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
