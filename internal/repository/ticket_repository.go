package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// ErrNotFound is returned when a ticket id is unknown to the store.
var ErrNotFound = errors.New("ticket not found")

// TicketFilter narrows ticket listings. Zero values match everything and
// a non-positive Limit returns every row.
type TicketFilter struct {
	Statuses   []domain.TicketStatus
	Priorities []domain.TicketPriority
	Category   string
	SearchTerm string
	Limit      int
	Offset     int
}

// TicketRepository encapsulates ticket persistence. List order is not part
// of the contract.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error
	UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) error
	UpdateAssignment(ctx context.Context, id int64, assignedTo string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, sender, issue, category, priority, status, assigned_to, message_id, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (sender, issue, category, priority, status, assigned_to, message_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Sender,
		ticket.Issue,
		ticket.Category,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedTo,
		ticket.SourceMessageID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := buildListQuery(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	return r.updateColumn(ctx, "status", id, status)
}

func (r *ticketRepository) UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) error {
	return r.updateColumn(ctx, "priority", id, priority)
}

func (r *ticketRepository) UpdateAssignment(ctx context.Context, id int64, assignedTo string) error {
	return r.updateColumn(ctx, "assigned_to", id, assignedTo)
}

// updateColumn writes one mutable column.
func (r *ticketRepository) updateColumn(ctx context.Context, column string, id int64, value any) error {
	cmd, err := r.pool.Exec(ctx, updateColumnQuery(column), value, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// buildListQuery renders filter as a SELECT with positional arguments.
// Matching is case-insensitive and newest tickets come first.
func buildListQuery(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, strings.ToLower(string(status)))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("LOWER(status) IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, strings.ToLower(string(pr)))
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("LOWER(priority) IN (%s)", strings.Join(placeholders, ",")))
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		args = append(args, strings.ToLower(category))
		clauses = append(clauses, fmt.Sprintf("LOWER(category)=$%d", len(args)))
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(issue) LIKE %s OR LOWER(sender) LIKE %s)", placeholder, placeholder))
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return query, args
}

// updateColumnQuery updates one column by id. updated_at never moves backwards.
func updateColumnQuery(column string) string {
	return fmt.Sprintf(`UPDATE tickets SET %s=$1, updated_at=GREATEST(updated_at, NOW()) WHERE id=$2`, column)
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	if err := row.Scan(
		&ticket.ID,
		&ticket.Sender,
		&ticket.Issue,
		&ticket.Category,
		&ticket.Priority,
		&ticket.Status,
		&ticket.AssignedTo,
		&ticket.SourceMessageID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return err
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	return nil
}
