package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/events"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
)

// IncidentService coordinates priority-incident workflows.
type IncidentService struct {
	incidents  repository.IncidentRepository
	dispatcher events.Dispatcher
}

// NewIncidentService constructs the service.
func NewIncidentService(incidents repository.IncidentRepository, dispatcher events.Dispatcher) *IncidentService {
	return &IncidentService{incidents: incidents, dispatcher: dispatcher}
}

// ListActive returns active incidents ordered by priority.
func (s *IncidentService) ListActive(ctx context.Context) ([]domain.Incident, error) {
	return s.incidents.List(ctx, true)
}

// List returns incidents, optionally restricted to active ones.
func (s *IncidentService) List(ctx context.Context, activeOnly bool) ([]domain.Incident, error) {
	return s.incidents.List(ctx, activeOnly)
}

// Join registers the caller against an active incident, incrementing the
// affected-user counter by exactly 1. The incident is returned with the
// post-increment count; ok is false when the incident is unknown or
// inactive.
func (s *IncidentService) Join(ctx context.Context, rawID string) (*domain.Incident, bool, error) {
	incidentID := NormalizeID(rawID)
	incident, err := s.incidents.GetByIncidentID(ctx, incidentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	count, ok, err := s.incidents.Join(ctx, incidentID)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		// existed but inactive
		return incident, false, nil
	}
	incident.AffectedUsers = count

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventIncidentJoined,
			Subject:   incidentID,
			Timestamp: time.Now(),
			Payload:   events.IncidentJoinedPayload{AffectedUsers: count},
		})
	}
	return incident, true, nil
}

// AdjustAffected applies a manual delta to the affected-user counter. The
// counter is floored at zero; a decrement below zero clamps rather than
// going negative.
func (s *IncidentService) AdjustAffected(ctx context.Context, rawID string, delta int) (int, bool, error) {
	return s.incidents.AdjustAffected(ctx, NormalizeID(rawID), delta)
}
