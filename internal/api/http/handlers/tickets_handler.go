package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voice-servicedesk/internal/api/dto"
	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
	"github.com/spec-kit/voice-servicedesk/internal/service"
	apperrors "github.com/spec-kit/voice-servicedesk/pkg/util/errorutil"
)

// TicketsHandler exposes ticket CRUD endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.tickets.ListTickets(c.UserContext(), c.Query("status", "all"), 0)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"count":   len(tickets),
		"tickets": dto.NewTicketResponses(tickets),
	})
}

// Get handles GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id := service.NormalizeID(c.Params("id"))
	ticket, err := h.tickets.GetTicket(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return err
	}
	return c.JSON(dto.NewTicketResponse(*ticket))
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.TicketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if strings.TrimSpace(req.Title) == "" {
		return apperrors.NewValidationError("title is required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.TicketPriority(req.Priority),
		Category:    domain.Category(req.Category),
		Requester:   req.Requester,
	})
	if err != nil {
		if errors.Is(err, service.ErrTicketNumberExhausted) {
			return apperrors.NewConflict("could not allocate a ticket number", nil)
		}
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(*ticket))
}

// Patch handles PATCH /api/tickets/:id.
func (h *TicketsHandler) Patch(c *fiber.Ctx) error {
	var req dto.TicketPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	update := repository.TicketUpdate{Resolution: req.Resolution}
	if req.Status != nil {
		status := domain.TicketStatus(strings.ToLower(*req.Status))
		if !domain.ValidStatus(status) {
			return apperrors.NewValidationError("invalid status", map[string]any{"status": *req.Status})
		}
		update.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TicketPriority(strings.ToLower(*req.Priority))
		if !domain.ValidPriority(priority) {
			return apperrors.NewValidationError("invalid priority", map[string]any{"priority": *req.Priority})
		}
		update.Priority = &priority
	}

	id := service.NormalizeID(c.Params("id"))
	ok, err := h.tickets.UpdateFields(c.UserContext(), id, update)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}

	ticket, err := h.tickets.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(*ticket))
}

// Delete handles DELETE /api/tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	id := service.NormalizeID(c.Params("id"))
	ok, err := h.tickets.DeleteTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return c.JSON(fiber.Map{"deleted": true, "ticket_id": id})
}
