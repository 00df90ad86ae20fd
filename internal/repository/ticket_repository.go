package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
)

// ErrDuplicateTicketID signals a uniqueness conflict on ticket_id, raised
// when concurrent writers race to the same numeric suffix.
var ErrDuplicateTicketID = errors.New("duplicate ticket id")

const pgUniqueViolation = "23505"

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status *domain.TicketStatus
	Limit  int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Insert(ctx context.Context, ticket *domain.Ticket) error
	MaxTicketNumber(ctx context.Context) (int, error)
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus, resolution *string) (bool, error)
	UpdateFields(ctx context.Context, ticketID string, update TicketUpdate) (bool, error)
	Delete(ctx context.Context, ticketID string) (bool, error)
}

// TicketUpdate describes a partial ticket mutation.
type TicketUpdate struct {
	Status     *domain.TicketStatus
	Resolution *string
	Priority   *domain.TicketPriority
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Insert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, title, description, priority, category, status, requester, resolution)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.Title,
		ticket.Description,
		ticket.Priority,
		ticket.Category,
		ticket.Status,
		ticket.Requester,
		ticket.Resolution,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateTicketID
		}
		return err
	}
	return nil
}

// MaxTicketNumber scans all ticket identifiers matching TKT-<digits> and
// returns the highest numeric suffix, or 0 when none exist. Relying on the
// row count would mint duplicates once tickets are deleted.
func (r *ticketRepository) MaxTicketNumber(ctx context.Context) (int, error) {
	const query = `
        SELECT COALESCE(MAX(substring(ticket_id FROM '^TKT-(\d+)$')::int), 0)
        FROM tickets
        WHERE ticket_id ~ '^TKT-\d+$'`
	var max int
	if err := r.pool.QueryRow(ctx, query).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

const ticketColumns = `id, ticket_id, title, description, priority, category, status, requester, resolution, created_at, updated_at`

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Priority,
		&ticket.Category,
		&ticket.Status,
		&ticket.Requester,
		&ticket.Resolution,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets`
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` WHERE status=$1`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		if filter.Status != nil {
			query += ` LIMIT $2`
		} else {
			query += ` LIMIT $1`
		}
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus, resolution *string) (bool, error) {
	const query = `
        UPDATE tickets SET status=$2, resolution=COALESCE($3, resolution), updated_at=NOW()
        WHERE ticket_id=$1`
	cmd, err := r.pool.Exec(ctx, query, ticketID, status, resolution)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) UpdateFields(ctx context.Context, ticketID string, update TicketUpdate) (bool, error) {
	const query = `
        UPDATE tickets SET
            status=COALESCE($2, status),
            resolution=COALESCE($3, resolution),
            priority=COALESCE($4, priority),
            updated_at=NOW()
        WHERE ticket_id=$1`
	cmd, err := r.pool.Exec(ctx, query, ticketID, update.Status, update.Resolution, update.Priority)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *ticketRepository) Delete(ctx context.Context, ticketID string) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE ticket_id=$1`, ticketID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Priority,
			&ticket.Category,
			&ticket.Status,
			&ticket.Requester,
			&ticket.Resolution,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
