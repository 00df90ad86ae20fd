package realtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/service"
)

// Actions executes intercepted tool calls against the service layer. Every
// execution produces a JSON-marshalable result map; failures are folded into
// the result rather than propagated, so one bad call never ends a session.
type Actions struct {
	tickets   *service.TicketService
	knowledge *service.KnowledgeService
	incidents *service.IncidentService
	logger    *zap.Logger
}

// NewActions constructs the executor.
func NewActions(tickets *service.TicketService, knowledge *service.KnowledgeService, incidents *service.IncidentService, logger *zap.Logger) *Actions {
	return &Actions{tickets: tickets, knowledge: knowledge, incidents: incidents, logger: logger}
}

// Execute runs one tool call and returns its result payload.
func (a *Actions) Execute(ctx context.Context, call ToolCall) map[string]any {
	args, err := DecodeArgs(call.Name, call.RawArguments)
	if err != nil {
		return map[string]any{"error": "Unknown function: " + call.Name}
	}

	switch v := args.(type) {
	case CreateTicketArgs:
		return a.createTicket(ctx, v)
	case SearchKnowledgeArgs:
		return a.searchKnowledge(ctx, v)
	case GetTicketArgs:
		return a.getTicket(ctx, v)
	case ListTicketsArgs:
		return a.listTickets(ctx, v)
	case UpdateTicketArgs:
		return a.updateTicket(ctx, v)
	case ListIncidentsArgs:
		return a.listIncidents(ctx)
	case JoinIncidentArgs:
		return a.joinIncident(ctx, v)
	default:
		return map[string]any{"error": "Unknown function: " + call.Name}
	}
}

func (a *Actions) createTicket(ctx context.Context, args CreateTicketArgs) map[string]any {
	if strings.TrimSpace(args.Title) == "" {
		return map[string]any{"success": false, "message": "A ticket title is required."}
	}
	description := args.Description
	if strings.TrimSpace(description) == "" {
		description = args.Title
	}

	ticket, err := a.tickets.CreateTicket(ctx, service.TicketCreateInput{
		Title:       args.Title,
		Description: description,
		Priority:    args.Priority,
		Category:    args.Category,
	})
	if err != nil {
		a.logger.Error("create ticket failed", zap.Error(err))
		return map[string]any{"success": false, "message": "Failed to create the ticket. Please try again."}
	}
	return map[string]any{
		"success":   true,
		"ticket_id": ticket.TicketID,
		"message": fmt.Sprintf("Ticket %s created successfully. Title: %s. Priority: %s.",
			ticket.TicketID, ticket.Title, ticket.Priority),
	}
}

func (a *Actions) searchKnowledge(ctx context.Context, args SearchKnowledgeArgs) map[string]any {
	result := a.knowledge.Search(ctx, args.Query)
	if !result.Found {
		return map[string]any{"found": false, "message": result.Message}
	}
	return map[string]any{
		"found":    true,
		"summary":  result.Summary,
		"articles": result.ArticleIDs,
	}
}

func (a *Actions) getTicket(ctx context.Context, args GetTicketArgs) map[string]any {
	id := service.NormalizeID(args.TicketID)
	ticket, err := a.tickets.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]any{"found": false, "message": fmt.Sprintf("Ticket %s not found.", id)}
		}
		a.logger.Error("get ticket failed", zap.String("ticket_id", id), zap.Error(err))
		return map[string]any{"found": false, "message": "Could not look up the ticket right now."}
	}
	return map[string]any{
		"found":       true,
		"ticket_id":   ticket.TicketID,
		"title":       ticket.Title,
		"description": ticket.Description,
		"status":      ticket.Status,
		"priority":    ticket.Priority,
		"category":    ticket.Category,
		"requester":   ticket.Requester,
		"resolution":  ticket.Resolution,
		"created_at":  ticket.CreatedAt.Format(time.RFC3339),
	}
}

func (a *Actions) listTickets(ctx context.Context, args ListTicketsArgs) map[string]any {
	tickets, err := a.tickets.ListTickets(ctx, args.Status, 10)
	if err != nil {
		a.logger.Error("list tickets failed", zap.Error(err))
		return map[string]any{"count": 0, "message": "Could not list tickets right now.", "tickets": []any{}}
	}
	if len(tickets) == 0 {
		return map[string]any{"count": 0, "message": "No tickets found.", "tickets": []any{}}
	}

	items := make([]map[string]any, 0, len(tickets))
	parts := make([]string, 0, len(tickets))
	for i, t := range tickets {
		items = append(items, map[string]any{
			"ticket_id": t.TicketID,
			"title":     t.Title,
			"status":    t.Status,
			"priority":  t.Priority,
			"category":  t.Category,
		})
		if i < 5 {
			parts = append(parts, fmt.Sprintf("%s (%s)", t.TicketID, t.Status))
		}
	}
	return map[string]any{
		"count":   len(tickets),
		"tickets": items,
		"message": fmt.Sprintf("Found %d tickets: %s", len(tickets), strings.Join(parts, ", ")),
	}
}

func (a *Actions) updateTicket(ctx context.Context, args UpdateTicketArgs) map[string]any {
	id := service.NormalizeID(args.TicketID)
	status := domain.TicketStatus(strings.ToLower(strings.TrimSpace(args.Status)))
	if !domain.ValidStatus(status) {
		return map[string]any{"success": false, "message": fmt.Sprintf("Invalid status: %s.", args.Status)}
	}

	ok, err := a.tickets.UpdateStatus(ctx, id, status, args.Note)
	if err != nil {
		a.logger.Error("update ticket failed", zap.String("ticket_id", id), zap.Error(err))
		return map[string]any{"success": false, "message": "Could not update the ticket right now."}
	}
	if !ok {
		return map[string]any{"success": false, "message": fmt.Sprintf("Ticket %s not found.", id)}
	}
	return map[string]any{
		"success":   true,
		"ticket_id": id,
		"message":   fmt.Sprintf("Ticket %s updated to status: %s.", id, status),
	}
}

func (a *Actions) listIncidents(ctx context.Context) map[string]any {
	incidents, err := a.incidents.ListActive(ctx)
	if err != nil {
		a.logger.Error("list incidents failed", zap.Error(err))
		return map[string]any{"count": 0, "message": "Could not list incidents right now.", "incidents": []any{}}
	}
	if len(incidents) == 0 {
		return map[string]any{
			"count":     0,
			"message":   "There are no active priority incidents right now.",
			"incidents": []any{},
		}
	}

	items := make([]map[string]any, 0, len(incidents))
	parts := make([]string, 0, len(incidents))
	for _, inc := range incidents {
		items = append(items, map[string]any{
			"incident_id":    inc.IncidentID,
			"title":          inc.Title,
			"description":    inc.Description,
			"priority":       inc.Priority,
			"status":         inc.Status,
			"affected_users": inc.AffectedUsers,
			"since":          inc.Since.Format(time.RFC3339),
		})
		parts = append(parts, fmt.Sprintf("%s: %s (%d users affected)", inc.IncidentID, inc.Title, inc.AffectedUsers))
	}
	return map[string]any{
		"count":     len(incidents),
		"incidents": items,
		"message":   fmt.Sprintf("There are %d active incidents. %s", len(incidents), strings.Join(parts, ". ")),
	}
}

func (a *Actions) joinIncident(ctx context.Context, args JoinIncidentArgs) map[string]any {
	id := service.NormalizeID(args.IncidentID)
	incident, joined, err := a.incidents.Join(ctx, id)
	if err != nil {
		a.logger.Error("join incident failed", zap.String("incident_id", id), zap.Error(err))
		return map[string]any{"success": false, "message": "Could not join the incident right now."}
	}
	if incident == nil {
		return map[string]any{"success": false, "message": fmt.Sprintf("Incident %s not found.", id)}
	}
	if !joined {
		return map[string]any{
			"success": false,
			"message": fmt.Sprintf("Incident %s is no longer active, so you can't be added to it.", id),
		}
	}
	return map[string]any{
		"success":        true,
		"incident_id":    incident.IncidentID,
		"affected_users": incident.AffectedUsers,
		"message": fmt.Sprintf("You've been added to incident %s. %d users are currently affected.",
			incident.Title, incident.AffectedUsers),
	}
}
