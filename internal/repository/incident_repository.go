package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// IncidentRepository encapsulates priority-incident persistence.
type IncidentRepository interface {
	GetByIncidentID(ctx context.Context, incidentID string) (*domain.Incident, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Incident, error)
	// Join atomically increments the affected-user counter of an active
	// incident by exactly 1 and returns the new count. The second return
	// is false when no active incident matched.
	Join(ctx context.Context, incidentID string) (int, bool, error)
	// AdjustAffected applies a manual delta to the counter, floored at
	// zero, and returns the new count. False when the incident is unknown.
	AdjustAffected(ctx context.Context, incidentID string, delta int) (int, bool, error)
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

const incidentColumns = `id, incident_id, title, description, priority, status, active, affected_users, since, created_at, updated_at`

func (r *incidentRepository) GetByIncidentID(ctx context.Context, incidentID string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE incident_id=$1`
	var inc domain.Incident
	if err := r.pool.QueryRow(ctx, query, incidentID).Scan(
		&inc.ID,
		&inc.IncidentID,
		&inc.Title,
		&inc.Description,
		&inc.Priority,
		&inc.Status,
		&inc.Active,
		&inc.AffectedUsers,
		&inc.Since,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepository) List(ctx context.Context, activeOnly bool) ([]domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents`
	if activeOnly {
		query += ` WHERE active`
	}
	query += `
        ORDER BY CASE priority
            WHEN 'critical' THEN 0
            WHEN 'high' THEN 1
            WHEN 'medium' THEN 2
            ELSE 3
        END, since DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Incident
	for rows.Next() {
		var inc domain.Incident
		if err := rows.Scan(
			&inc.ID,
			&inc.IncidentID,
			&inc.Title,
			&inc.Description,
			&inc.Priority,
			&inc.Status,
			&inc.Active,
			&inc.AffectedUsers,
			&inc.Since,
			&inc.CreatedAt,
			&inc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, inc)
	}
	return result, rows.Err()
}

func (r *incidentRepository) Join(ctx context.Context, incidentID string) (int, bool, error) {
	const query = `
        UPDATE incidents SET affected_users = affected_users + 1, updated_at = NOW()
        WHERE incident_id=$1 AND active
        RETURNING affected_users`
	var count int
	err := r.pool.QueryRow(ctx, query, incidentID).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

func (r *incidentRepository) AdjustAffected(ctx context.Context, incidentID string, delta int) (int, bool, error) {
	const query = `
        UPDATE incidents SET affected_users = GREATEST(affected_users + $2, 0), updated_at = NOW()
        WHERE incident_id=$1
        RETURNING affected_users`
	var count int
	err := r.pool.QueryRow(ctx, query, incidentID, delta).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}
