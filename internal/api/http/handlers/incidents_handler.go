package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/voice-servicedesk/internal/api/dto"
	"github.com/spec-kit/voice-servicedesk/internal/service"
	apperrors "github.com/spec-kit/voice-servicedesk/pkg/util/errorutil"
)

// IncidentsHandler exposes priority-incident endpoints.
type IncidentsHandler struct {
	incidents *service.IncidentService
}

// NewIncidentsHandler constructs handler.
func NewIncidentsHandler(incidents *service.IncidentService) *IncidentsHandler {
	return &IncidentsHandler{incidents: incidents}
}

// List handles GET /api/incidents.
func (h *IncidentsHandler) List(c *fiber.Ctx) error {
	activeOnly := c.Query("active") == "true"
	incidents, err := h.incidents.List(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"count":     len(incidents),
		"incidents": dto.NewIncidentResponses(incidents),
	})
}

// Adjust handles POST /api/incidents/:id/adjust. The counter never drops
// below zero.
func (h *IncidentsHandler) Adjust(c *fiber.Ctx) error {
	var req dto.IncidentAdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Delta == 0 {
		return apperrors.NewValidationError("delta must be non-zero", nil)
	}

	id := service.NormalizeID(c.Params("id"))
	count, ok, err := h.incidents.AdjustAffected(c.UserContext(), id, req.Delta)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("incident", map[string]any{"incident_id": id})
	}
	return c.JSON(fiber.Map{
		"incident_id":    id,
		"affected_users": count,
	})
}
