package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/events"
)

// memIncidentRepo is an in-memory IncidentRepository.
type memIncidentRepo struct {
	incidents map[string]*domain.Incident
}

func newMemIncidentRepo(incidents ...*domain.Incident) *memIncidentRepo {
	repo := &memIncidentRepo{incidents: map[string]*domain.Incident{}}
	for _, inc := range incidents {
		repo.incidents[inc.IncidentID] = inc
	}
	return repo
}

func (r *memIncidentRepo) GetByIncidentID(_ context.Context, incidentID string) (*domain.Incident, error) {
	if inc, ok := r.incidents[incidentID]; ok {
		out := *inc
		return &out, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memIncidentRepo) List(_ context.Context, activeOnly bool) ([]domain.Incident, error) {
	var out []domain.Incident
	for _, inc := range r.incidents {
		if activeOnly && !inc.Active {
			continue
		}
		out = append(out, *inc)
	}
	return out, nil
}

func (r *memIncidentRepo) Join(_ context.Context, incidentID string) (int, bool, error) {
	inc, ok := r.incidents[incidentID]
	if !ok || !inc.Active {
		return 0, false, nil
	}
	inc.AffectedUsers++
	return inc.AffectedUsers, true, nil
}

func (r *memIncidentRepo) AdjustAffected(_ context.Context, incidentID string, delta int) (int, bool, error) {
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

func TestJoinActiveIncident(t *testing.T) {
	repo := newMemIncidentRepo(&domain.Incident{
		IncidentID:    "INC-1001",
		Title:         "Email Service Degradation",
		Active:        true,
		AffectedUsers: 42,
	})
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.EventIncidentJoined, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := NewIncidentService(repo, dispatcher)
	incident, joined, err := svc.Join(context.Background(), "inc-1001")
	require.NoError(t, err)
	require.True(t, joined)
	assert.Equal(t, 43, incident.AffectedUsers)
	assert.Equal(t, "Email Service Degradation", incident.Title)

	require.Len(t, published, 1)
	assert.Equal(t, "INC-1001", published[0].Subject)
}

func TestJoinInactiveIncident(t *testing.T) {
	repo := newMemIncidentRepo(&domain.Incident{IncidentID: "INC-1002", Active: false, AffectedUsers: 5})
	svc := NewIncidentService(repo, nil)

	incident, joined, err := svc.Join(context.Background(), "INC-1002")
	require.NoError(t, err)
	assert.False(t, joined)
	require.NotNil(t, incident)
	// counter untouched
	assert.Equal(t, 5, repo.incidents["INC-1002"].AffectedUsers)
}

func TestJoinUnknownIncident(t *testing.T) {
	svc := NewIncidentService(newMemIncidentRepo(), nil)

	incident, joined, err := svc.Join(context.Background(), "INC-9999")
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Nil(t, incident)
}

func TestAdjustAffectedClampsAtZero(t *testing.T) {
	repo := newMemIncidentRepo(&domain.Incident{IncidentID: "INC-1001", Active: true, AffectedUsers: 3})
	svc := NewIncidentService(repo, nil)

	count, ok, err := svc.AdjustAffected(context.Background(), "inc-1001", -10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 0, count)
}

func TestListActiveFiltersInactive(t *testing.T) {
	repo := newMemIncidentRepo(
		&domain.Incident{IncidentID: "INC-1001", Active: true},
		&domain.Incident{IncidentID: "INC-1002", Active: false},
	)
	svc := NewIncidentService(repo, nil)

	active, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "INC-1001", active[0].IncidentID)
}
