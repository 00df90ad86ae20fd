package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/events"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
)

// memTicketRepo is an in-memory TicketRepository with a configurable number
// of forced insert collisions.
type memTicketRepo struct {
	mu          sync.Mutex
	tickets     map[string]domain.Ticket
	max         int
	computeMax  bool
	failInserts int
	lastFilter  repository.TicketFilter
}

func newMemTicketRepo(max int) *memTicketRepo {
	return &memTicketRepo{tickets: map[string]domain.Ticket{}, max: max}
}

func (r *memTicketRepo) Insert(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failInserts > 0 {
		r.failInserts--
		return repository.ErrDuplicateTicketID
	}
	if _, exists := r.tickets[ticket.TicketID]; exists {
		return repository.ErrDuplicateTicketID
	}
	r.tickets[ticket.TicketID] = *ticket
	return nil
}

func (r *memTicketRepo) MaxTicketNumber(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.computeMax {
		return r.max, nil
	}
	max := 0
	for id := range r.tickets {
		var n int
		if _, err := fmt.Sscanf(id, "TKT-%d", &n); err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

func (r *memTicketRepo) GetByTicketID(_ context.Context, ticketID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickets[ticketID]; ok {
		return &t, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	var out []domain.Ticket
	for _, t := range r.tickets {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *memTicketRepo) UpdateStatus(_ context.Context, ticketID string, status domain.TicketStatus, resolution *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return false, nil
	}
	t.Status = status
	if resolution != nil {
		t.Resolution = resolution
	}
	r.tickets[ticketID] = t
	return true, nil
}

func (r *memTicketRepo) UpdateFields(_ context.Context, ticketID string, update repository.TicketUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[ticketID]
	if !ok {
		return false, nil
	}
	if update.Status != nil {
		t.Status = *update.Status
	}
	if update.Resolution != nil {
		t.Resolution = update.Resolution
	}
	if update.Priority != nil {
		t.Priority = *update.Priority
	}
	r.tickets[ticketID] = t
	return true, nil
}

func (r *memTicketRepo) Delete(_ context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticketID]; !ok {
		return false, nil
	}
	delete(r.tickets, ticketID)
	return true, nil
}

func TestFormatTicketID(t *testing.T) {
	assert.Equal(t, "TKT-001", FormatTicketID(1))
	assert.Equal(t, "TKT-042", FormatTicketID(42))
	assert.Equal(t, "TKT-999", FormatTicketID(999))
	assert.Equal(t, "TKT-1000", FormatTicketID(1000))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "TKT-007", NormalizeID("  tkt-007 "))
	assert.Equal(t, "INC-1001", NormalizeID("inc-1001"))
}

func TestCreateTicketAllocatesNextNumber(t *testing.T) {
	repo := newMemTicketRepo(3)
	svc := NewTicketService(repo, nil)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       "VPN keeps dropping",
		Description: "Disconnects every few minutes",
		Priority:    domain.TicketPriorityHigh,
		Category:    domain.CategoryNetwork,
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-004", ticket.TicketID)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "Voice Agent User", ticket.Requester)
	assert.Nil(t, ticket.Resolution)
}

func TestCreateTicketDefaultsInvalidEnums(t *testing.T) {
	repo := newMemTicketRepo(0)
	svc := NewTicketService(repo, nil)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:    "Weird issue",
		Priority: "urgent",
		Category: "printers",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, domain.CategoryGeneral, ticket.Category)
}

func TestCreateTicketRetriesOnCollision(t *testing.T) {
	repo := newMemTicketRepo(7)
	repo.failInserts = 2
	svc := NewTicketService(repo, nil)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "Monitor flickers"})
	require.NoError(t, err)
	// attempts 0 and 1 collided, attempt 2 took the next free suffix
	assert.Equal(t, "TKT-010", ticket.TicketID)
}

func TestCreateTicketExhaustsRetries(t *testing.T) {
	repo := newMemTicketRepo(7)
	repo.failInserts = 3
	svc := NewTicketService(repo, nil)

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "Monitor flickers"})
	require.ErrorIs(t, err, ErrTicketNumberExhausted)
}

func TestCreateTicketDoesNotRetryOtherErrors(t *testing.T) {
	repo := &failingTicketRepo{err: errors.New("connection refused")}
	svc := NewTicketService(repo, nil)

	_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, 1, repo.inserts)
}

func TestCreateTicketPublishesEvent(t *testing.T) {
	repo := newMemTicketRepo(0)
	dispatcher := events.NewInMemoryDispatcher()

	var published []events.Event
	dispatcher.Subscribe(events.EventTicketCreated, func(_ context.Context, e events.Event) error {
		published = append(published, e)
		return nil
	})

	svc := NewTicketService(repo, dispatcher)
	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "Mouse broken"})
	require.NoError(t, err)

	require.Len(t, published, 1)
	assert.Equal(t, ticket.TicketID, published[0].Subject)
	assert.NotEmpty(t, published[0].ID)
}

func TestListTicketsStatusFilter(t *testing.T) {
	repo := newMemTicketRepo(0)
	svc := NewTicketService(repo, nil)

	_, err := svc.ListTickets(context.Background(), "open", 10)
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilter.Status)
	assert.Equal(t, domain.TicketStatusOpen, *repo.lastFilter.Status)

	_, err = svc.ListTickets(context.Background(), "all", 10)
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.Status)

	_, err = svc.ListTickets(context.Background(), "bogus", 10)
	require.NoError(t, err)
	assert.Nil(t, repo.lastFilter.Status)
}

func TestUpdateStatusWithNote(t *testing.T) {
	repo := newMemTicketRepo(0)
	svc := NewTicketService(repo, nil)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "Email bounce"})
	require.NoError(t, err)

	ok, err := svc.UpdateStatus(context.Background(), ticket.TicketID, domain.TicketStatusResolved, "rebuilt mailbox")
	require.NoError(t, err)
	require.True(t, ok)

	updated, err := svc.GetTicket(context.Background(), ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.Resolution)
	assert.Equal(t, "rebuilt mailbox", *updated.Resolution)
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	svc := NewTicketService(newMemTicketRepo(0), nil)

	ok, err := svc.UpdateStatus(context.Background(), "TKT-999", domain.TicketStatusClosed, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateTicketNumberNotReusedAfterDeletion(t *testing.T) {
	repo := newMemTicketRepo(0)
	repo.computeMax = true
	svc := NewTicketService(repo, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "seed"})
		require.NoError(t, err)
	}

	ok, err := svc.DeleteTicket(context.Background(), "TKT-002")
	require.NoError(t, err)
	require.True(t, ok)

	ticket, err := svc.CreateTicket(context.Background(), TicketCreateInput{Title: "after delete"})
	require.NoError(t, err)
	assert.Equal(t, "TKT-004", ticket.TicketID)
}

// failingTicketRepo fails every insert with a non-collision error.
type failingTicketRepo struct {
	err     error
	inserts int
}

func (r *failingTicketRepo) Insert(context.Context, *domain.Ticket) error {
	r.inserts++
	return r.err
}
func (r *failingTicketRepo) MaxTicketNumber(context.Context) (int, error) { return 0, nil }
func (r *failingTicketRepo) GetByTicketID(context.Context, string) (*domain.Ticket, error) {
	return nil, pgx.ErrNoRows
}
func (r *failingTicketRepo) List(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, nil
}
func (r *failingTicketRepo) UpdateStatus(context.Context, string, domain.TicketStatus, *string) (bool, error) {
	return false, nil
}
func (r *failingTicketRepo) UpdateFields(context.Context, string, repository.TicketUpdate) (bool, error) {
	return false, nil
}
func (r *failingTicketRepo) Delete(context.Context, string) (bool, error) { return false, nil }
