package events

import (
	"time"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventIncidentJoined      EventType = "incident_joined"
	EventToolExecuted        EventType = "tool_executed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Subject   string      `json:"subject"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Category domain.Category       `json:"category"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	NewStatus  domain.TicketStatus `json:"new_status"`
	Resolution string              `json:"resolution,omitempty"`
}

// IncidentJoinedPayload payload.
type IncidentJoinedPayload struct {
	AffectedUsers int `json:"affected_users"`
}

// ToolExecutedPayload payload.
type ToolExecutedPayload struct {
	Tool    string `json:"tool"`
	Success bool   `json:"success"`
}
