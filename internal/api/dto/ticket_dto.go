package dto

import (
	"time"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// TicketCreateRequest is the POST /api/tickets payload.
type TicketCreateRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	Requester   string `json:"requester"`
}

// TicketPatchRequest is the PATCH /api/tickets/:id payload. Absent fields
// are left unchanged.
type TicketPatchRequest struct {
	Status     *string `json:"status"`
	Resolution *string `json:"resolution"`
	Priority   *string `json:"priority"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	TicketID    string  `json:"ticket_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	Category    string  `json:"category"`
	Status      string  `json:"status"`
	Requester   string  `json:"requester"`
	Resolution  *string `json:"resolution"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket onto the wire shape.
func NewTicketResponse(t domain.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:    t.TicketID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Category:    string(t.Category),
		Status:      string(t.Status),
		Requester:   t.Requester,
		Resolution:  t.Resolution,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}

// NewTicketResponses maps a ticket slice.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, NewTicketResponse(t))
	}
	return out
}
