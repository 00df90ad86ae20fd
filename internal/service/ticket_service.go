package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/events"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
)

// ErrTicketNumberExhausted is returned when every candidate suffix collided
// with a concurrent writer.
var ErrTicketNumberExhausted = errors.New("could not allocate a ticket id")

const ticketCreateAttempts = 3

// TicketService coordinates ticket workflows for both the voice tools and
// the REST surface.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
	Category    domain.Category
	Requester   string
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher}
}

// FormatTicketID renders the numeric suffix as TKT-NNN, zero-padded to
// three digits and unbounded beyond 999.
func FormatTicketID(n int) string {
	return fmt.Sprintf("TKT-%03d", n)
}

// NormalizeID uppercases a user-supplied identifier.
func NormalizeID(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// CreateTicket allocates the next ticket identifier and inserts the ticket.
// The suffix comes from scanning the existing TKT-<digits> identifiers for
// the maximum; collisions with concurrent writers are resolved by retrying
// with the next candidate, bounded at three attempts.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	last, err := s.tickets.MaxTicketNumber(ctx)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if !domain.ValidPriority(priority) {
		priority = domain.TicketPriorityMedium
	}
	category := input.Category
	if !domain.ValidCategory(category) {
		category = domain.CategoryGeneral
	}
	requester := strings.TrimSpace(input.Requester)
	if requester == "" {
		requester = "Voice Agent User"
	}

	for attempt := 0; attempt < ticketCreateAttempts; attempt++ {
		ticket := &domain.Ticket{
			TicketID:    FormatTicketID(last + 1 + attempt),
			Title:       strings.TrimSpace(input.Title),
			Description: strings.TrimSpace(input.Description),
			Priority:    priority,
			Category:    category,
			Status:      domain.TicketStatusOpen,
			Requester:   requester,
			Resolution:  nil,
		}
		err := s.tickets.Insert(ctx, ticket)
		if err == nil {
			s.publish(ctx, events.Event{
				Type:    events.EventTicketCreated,
				Subject: ticket.TicketID,
				Payload: events.TicketCreatedPayload{
					Title:    ticket.Title,
					Priority: ticket.Priority,
					Category: ticket.Category,
				},
			})
			return ticket, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTicketID) {
			return nil, err
		}
	}
	return nil, ErrTicketNumberExhausted
}

// GetTicket fetches a ticket by its case-normalized identifier.
func (s *TicketService) GetTicket(ctx context.Context, rawID string) (*domain.Ticket, error) {
	return s.tickets.GetByTicketID(ctx, NormalizeID(rawID))
}

// ListTickets returns tickets sorted most-recent first, optionally filtered
// by status. "all" or an unknown value disables the filter.
func (s *TicketService) ListTickets(ctx context.Context, statusFilter string, limit int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{Limit: limit}
	status := domain.TicketStatus(strings.ToLower(strings.TrimSpace(statusFilter)))
	if domain.ValidStatus(status) {
		filter.Status = &status
	}
	return s.tickets.List(ctx, filter)
}

// UpdateStatus sets the status (and optionally a resolution note) on a
// ticket, bumping the modification timestamp. Returns false when no ticket
// matched.
func (s *TicketService) UpdateStatus(ctx context.Context, rawID string, status domain.TicketStatus, note string) (bool, error) {
	var resolution *string
	if trimmed := strings.TrimSpace(note); trimmed != "" {
		resolution = &trimmed
	}
	matched, err := s.tickets.UpdateStatus(ctx, NormalizeID(rawID), status, resolution)
	if err != nil || !matched {
		return matched, err
	}
	payload := events.TicketStatusChangedPayload{NewStatus: status}
	if resolution != nil {
		payload.Resolution = *resolution
	}
	s.publish(ctx, events.Event{
		Type:    events.EventTicketStatusChanged,
		Subject: NormalizeID(rawID),
		Payload: payload,
	})
	return true, nil
}

// UpdateFields applies a partial REST update.
func (s *TicketService) UpdateFields(ctx context.Context, rawID string, update repository.TicketUpdate) (bool, error) {
	return s.tickets.UpdateFields(ctx, NormalizeID(rawID), update)
}

// DeleteTicket removes a ticket. The identifier is never reissued for
// non-maximal suffixes because allocation scans the remaining maximum.
func (s *TicketService) DeleteTicket(ctx context.Context, rawID string) (bool, error) {
	return s.tickets.Delete(ctx, NormalizeID(rawID))
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
