package realtime

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/service"
)

// fakeIncidentRepo is a minimal in-memory IncidentRepository.
type fakeIncidentRepo struct {
	incidents map[string]*domain.Incident
}

func (r *fakeIncidentRepo) GetByIncidentID(_ context.Context, incidentID string) (*domain.Incident, error) {
	if inc, ok := r.incidents[incidentID]; ok {
		out := *inc
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeIncidentRepo) List(_ context.Context, activeOnly bool) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, inc := range r.incidents {
		if activeOnly && !inc.Active {
			continue
		}
		out = append(out, *inc)
	}
	return out, nil
}

func (r *fakeIncidentRepo) Join(_ context.Context, incidentID string) (int, bool, error) {
	inc, ok := r.incidents[incidentID]
	if !ok || !inc.Active {
		return 0, false, nil
	}
	inc.AffectedUsers++
	return inc.AffectedUsers, true, nil
}

func (r *fakeIncidentRepo) AdjustAffected(_ context.Context, incidentID string, delta int) (int, bool, error) {
	inc, ok := r.incidents[incidentID]
	if !ok {
		return 0, false, nil
	}
	inc.AffectedUsers += delta
	if inc.AffectedUsers < 0 {
		inc.AffectedUsers = 0
	}
	return inc.AffectedUsers, true, nil
}

func newTestActions(ticketRepo *fakeTicketRepo, incidentRepo *fakeIncidentRepo) *Actions {
	logger := zap.NewNop()
	tickets := service.NewTicketService(ticketRepo, nil)
	var incidents *service.IncidentService
	if incidentRepo != nil {
		incidents = service.NewIncidentService(incidentRepo, nil)
	}
	return NewActions(tickets, nil, incidents, logger)
}

func TestExecuteCreateTicket(t *testing.T) {
	actions := newTestActions(&fakeTicketRepo{}, nil)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolCreateTicket,
		RawArguments: `{"title":"Laptop won't boot","description":"Black screen","priority":"high","category":"hardware"}`,
	})
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "TKT-001", result["ticket_id"])
	assert.Contains(t, result["message"], "Ticket TKT-001 created successfully")
}

func TestExecuteCreateTicketRequiresTitle(t *testing.T) {
	actions := newTestActions(&fakeTicketRepo{}, nil)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolCreateTicket,
		RawArguments: `{"description":"no title"}`,
	})
	assert.Equal(t, false, result["success"])
}

func TestExecuteGetTicketNormalizesID(t *testing.T) {
	repo := &fakeTicketRepo{}
	repo.tickets = append(repo.tickets, domain.Ticket{TicketID: "TKT-003", Title: "Slow laptop", Status: domain.TicketStatusOpen})
	actions := newTestActions(repo, nil)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolGetTicket,
		RawArguments: `{"ticket_id":" tkt-003 "}`,
	})
	require.Equal(t, true, result["found"])
	assert.Equal(t, "TKT-003", result["ticket_id"])
}

func TestExecuteGetTicketNotFound(t *testing.T) {
	actions := newTestActions(&fakeTicketRepo{}, nil)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolGetTicket,
		RawArguments: `{"ticket_id":"tkt-999"}`,
	})
	assert.Equal(t, false, result["found"])
	assert.Contains(t, result["message"], "TKT-999")
}

func TestExecuteUpdateTicketRejectsInvalidStatus(t *testing.T) {
	actions := newTestActions(&fakeTicketRepo{}, nil)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolUpdateTicket,
		RawArguments: `{"ticket_id":"TKT-001","status":"done"}`,
	})
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["message"], "Invalid status")
}

func TestExecuteJoinIncident(t *testing.T) {
	repo := &fakeIncidentRepo{incidents: map[string]*domain.Incident{
		"INC-1001": {IncidentID: "INC-1001", Title: "Email Service Degradation", Active: true, AffectedUsers: 42},
	}}
	actions := newTestActions(&fakeTicketRepo{}, repo)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolJoinIncident,
		RawArguments: `{"incident_id":"inc-1001"}`,
	})
	require.Equal(t, true, result["success"])
	assert.Equal(t, 43, result["affected_users"])
	assert.Contains(t, result["message"], "Email Service Degradation")
}

func TestExecuteJoinInactiveIncident(t *testing.T) {
	repo := &fakeIncidentRepo{incidents: map[string]*domain.Incident{
		"INC-1002": {IncidentID: "INC-1002", Title: "Old Outage", Active: false},
	}}
	actions := newTestActions(&fakeTicketRepo{}, repo)

	result := actions.Execute(context.Background(), ToolCall{
		Name:         ToolJoinIncident,
		RawArguments: `{"incident_id":"INC-1002"}`,
	})
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["message"], "no longer active")
}

func TestExecuteListIncidentsEmpty(t *testing.T) {
	actions := newTestActions(&fakeTicketRepo{}, &fakeIncidentRepo{incidents: map[string]*domain.Incident{}})

	result := actions.Execute(context.Background(), ToolCall{Name: ToolListIncidents, RawArguments: `{}`})
	assert.Equal(t, 0, result["count"])
	assert.Equal(t, "There are no active priority incidents right now.", result["message"])
}

func TestExecuteUnknownTool(t *testing.T) {
	actions := newTestActions(&fakeTicketRepo{}, nil)

	result := actions.Execute(context.Background(), ToolCall{Name: "format_disk", RawArguments: `{}`})
	assert.Equal(t, "Unknown function: format_disk", result["error"])
}
