package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/voice-servicedesk/internal/domain"
	"github.com/spec-kit/voice-servicedesk/internal/repository"
)

// recordingWriter captures frames written through the JSONWriter interface.
type recordingWriter struct {
	mu     sync.Mutex
	frames []map[string]any
	fail   int // fail the first N writes
}

func (w *recordingWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail > 0 {
		w.fail--
		return errors.New("write refused")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	frame := map[string]any{}
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	w.frames = append(w.frames, frame)
	return nil
}

func (w *recordingWriter) types() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.frames))
	for _, f := range w.frames {
		t, _ := f["type"].(string)
		out = append(out, t)
	}
	return out
}

// fakeTicketRepo is an in-memory TicketRepository.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets []domain.Ticket
	nextID  int64
}

func (r *fakeTicketRepo) Insert(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tickets {
		if existing.TicketID == ticket.TicketID {
			return repository.ErrDuplicateTicketID
		}
	}
	r.nextID++
	ticket.ID = r.nextID
	r.tickets = append(r.tickets, *ticket)
	return nil
}

func (r *fakeTicketRepo) MaxTicketNumber(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 0
	for _, t := range r.tickets {
		if n, ok := parseTicketNumber(t.TicketID); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func (r *fakeTicketRepo) GetByTicketID(_ context.Context, ticketID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.TicketID == ticketID {
			out := t
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.tickets {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, ticketID string, status domain.TicketStatus, resolution *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].TicketID == ticketID {
			r.tickets[i].Status = status
			if resolution != nil {
				r.tickets[i].Resolution = resolution
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) UpdateFields(_ context.Context, ticketID string, update repository.TicketUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].TicketID == ticketID {
			if update.Status != nil {
				r.tickets[i].Status = *update.Status
			}
			if update.Resolution != nil {
				r.tickets[i].Resolution = update.Resolution
			}
			if update.Priority != nil {
				r.tickets[i].Priority = *update.Priority
			}
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.tickets {
		if r.tickets[i].TicketID == ticketID {
			r.tickets = append(r.tickets[:i], r.tickets[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func parseTicketNumber(ticketID string) (int, bool) {
	const prefix = "TKT-"
	if len(ticketID) <= len(prefix) || ticketID[:len(prefix)] != prefix {
		return 0, false
	}
	val := 0
	for _, ch := range ticketID[len(prefix):] {
		if ch < '0' || ch > '9' {
			return 0, false
		}
		val = val*10 + int(ch-'0')
	}
	return val, true
}

// fakeConfigRepo has no stored record, so the agent config service falls
// back to compiled-in defaults.
type fakeConfigRepo struct{}

func (fakeConfigRepo) Get(context.Context) (*domain.AgentConfig, error) { return nil, pgx.ErrNoRows }
func (fakeConfigRepo) Upsert(context.Context, domain.AgentConfig) error { return nil }
func (fakeConfigRepo) Delete(context.Context) (bool, error)             { return false, nil }

// fakeConn is an in-memory Conn backed by channels.
type fakeConn struct {
	in     chan []byte
	mu     sync.Mutex
	writes [][]byte
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case raw, ok := <-c.in:
		if !ok {
			return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
		}
		return websocket.TextMessage, raw, nil
	case <-c.closed:
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("connection closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := make([]byte, len(data))
	copy(copied, data)
	c.writes = append(c.writes, copied)
	return nil
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) frames() []map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]map[string]any, 0, len(c.writes))
	for _, raw := range c.writes {
		frame := map[string]any{}
		if err := json.Unmarshal(raw, &frame); err == nil {
			out = append(out, frame)
		}
	}
	return out
}
