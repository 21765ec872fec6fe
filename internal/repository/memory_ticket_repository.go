package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/domain"
)

type memoryTicketRepository struct {
	mu      sync.RWMutex
	clock   clock.Clock
	nextID  int64
	tickets map[int64]domain.Ticket
}

// NewMemoryTicketRepository returns a process-local store used when no
// Postgres DSN is configured, and by tests.
func NewMemoryTicketRepository(clk clock.Clock) TicketRepository {
	if clk == nil {
		clk = clock.Real()
	}
	return &memoryTicketRepository{clock: clk, tickets: make(map[int64]domain.Ticket)}
}

func (r *memoryTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := r.clock.Now()
	ticket.ID = r.nextID
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *memoryTicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &ticket, nil
}

func (r *memoryTicketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	result := make([]domain.Ticket, 0, len(r.tickets))
	for _, ticket := range r.tickets {
		if matches(ticket, filter) {
			result = append(result, ticket)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		if offset >= len(result) {
			return []domain.Ticket{}, nil
		}
		end := offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, nil
}

func (r *memoryTicketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	return r.mutate(ctx, id, func(t *domain.Ticket) { t.Status = status })
}

func (r *memoryTicketRepository) UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) error {
	return r.mutate(ctx, id, func(t *domain.Ticket) { t.Priority = priority })
}

func (r *memoryTicketRepository) UpdateAssignment(ctx context.Context, id int64, assignedTo string) error {
	return r.mutate(ctx, id, func(t *domain.Ticket) { t.AssignedTo = assignedTo })
}

func (r *memoryTicketRepository) mutate(ctx context.Context, id int64, apply func(*domain.Ticket)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	ticket, ok := r.tickets[id]
	if !ok {
		return ErrNotFound
	}
	apply(&ticket)
	if now := r.clock.Now(); now.After(ticket.UpdatedAt) {
		ticket.UpdatedAt = now
	}
	r.tickets[id] = ticket
	return nil
}

func matches(ticket domain.Ticket, filter TicketFilter) bool {
	if len(filter.Statuses) > 0 {
		found := false
		for _, status := range filter.Statuses {
			if strings.EqualFold(string(status), string(ticket.Status)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(filter.Priorities) > 0 {
		found := false
		for _, pr := range filter.Priorities {
			if strings.EqualFold(string(pr), string(ticket.Priority)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if category := strings.TrimSpace(filter.Category); category != "" && !strings.EqualFold(category, ticket.Category) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(filter.SearchTerm)); term != "" {
		if !strings.Contains(strings.ToLower(ticket.Issue), term) && !strings.Contains(strings.ToLower(ticket.Sender), term) {
			return false
		}
	}
	return true
}
