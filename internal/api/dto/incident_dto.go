package dto

import (
	"time"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// IncidentAdjustRequest is the POST /api/incidents/:id/adjust payload.
type IncidentAdjustRequest struct {
	Delta int `json:"delta"`
}

// IncidentResponse is the wire shape of a priority incident.
type IncidentResponse struct {
	IncidentID    string `json:"incident_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Priority      string `json:"priority"`
	Status        string `json:"status"`
	Active        bool   `json:"active"`
	AffectedUsers int    `json:"affected_users"`
	Since         string `json:"since"`
}

// NewIncidentResponse maps a domain incident onto the wire shape.
func NewIncidentResponse(i domain.Incident) IncidentResponse {
	return IncidentResponse{
		IncidentID:    i.IncidentID,
		Title:         i.Title,
		Description:   i.Description,
		Priority:      string(i.Priority),
		Status:        i.Status,
		Active:        i.Active,
		AffectedUsers: i.AffectedUsers,
		Since:         i.Since.Format(time.RFC3339),
	}
}

// NewIncidentResponses maps an incident slice.
func NewIncidentResponses(incidents []domain.Incident) []IncidentResponse {
	out := make([]IncidentResponse, 0, len(incidents))
	for _, i := range incidents {
		out = append(out, NewIncidentResponse(i))
	}
	return out
}
