package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/persistence"
)

const selectTickets = `SELECT ` + ticketColumns + ` FROM tickets WHERE `

func TestBuildListQuery(t *testing.T) {
	cases := []struct {
		name   string
		filter TicketFilter
		where  string
		tail   string
		args   []any
	}{
		{
			name:  "empty filter lists everything",
			where: "1=1",
			args:  []any{},
		},
		{
			name: "statuses and priorities lower-cased in order",
			filter: TicketFilter{
				Statuses:   []domain.TicketStatus{"Open", "ESCALATED"},
				Priorities: []domain.TicketPriority{"High"},
			},
			where: "1=1 AND LOWER(status) IN ($1,$2) AND LOWER(priority) IN ($3)",
			args:  []any{"open", "escalated", "high"},
		},
		{
			name:   "category and search share numbering",
			filter: TicketFilter{Category: " Email ", SearchTerm: "Ann"},
			where:  "1=1 AND LOWER(category)=$1 AND (LOWER(issue) LIKE $2 OR LOWER(sender) LIKE $2)",
			args:   []any{"email", "%ann%"},
		},
		{
			name:   "blank category and search are ignored",
			filter: TicketFilter{Category: "  ", SearchTerm: " "},
			where:  "1=1",
			args:   []any{},
		},
		{
			name:   "paging clamps a negative offset",
			filter: TicketFilter{Limit: 20, Offset: -5},
			where:  "1=1",
			tail:   " LIMIT 20 OFFSET 0",
			args:   []any{},
		},
		{
			name:   "second page",
			filter: TicketFilter{Statuses: []domain.TicketStatus{"open"}, Limit: 10, Offset: 10},
			where:  "1=1 AND LOWER(status) IN ($1)",
			tail:   " LIMIT 10 OFFSET 10",
			args:   []any{"open"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			query, args := buildListQuery(tc.filter)
			assert.Equal(t, selectTickets+tc.where+" ORDER BY created_at DESC, id DESC"+tc.tail, query)
			assert.Equal(t, tc.args, args)
		})
	}
}

func TestUpdateColumnQueryKeepsUpdatedAtMonotonic(t *testing.T) {
	query := updateColumnQuery("assigned_to")
	assert.True(t, strings.HasPrefix(query, "UPDATE tickets SET assigned_to=$1,"))
	assert.Contains(t, query, "updated_at=GREATEST(updated_at, NOW())")
	assert.True(t, strings.HasSuffix(query, "WHERE id=$2"))
}

// newPostgresPool connects to TEST_POSTGRES_DSN, applies the migrations and
// empties the tables. Tests are skipped when it is unset.
func newPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, filepath.Join("..", "..", persistence.MigrationsDir), zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE ticket_history, tickets RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func TestPostgresTicketRepository(t *testing.T) {
	pool := newPostgresPool(t)
	repo := NewTicketRepository(pool)
	ctx := context.Background()

	ticket := &domain.Ticket{Sender: "ann@corp.test", Issue: "VPN drops", Category: domain.CategoryNetworking, Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusNew}
	require.NoError(t, repo.Create(ctx, ticket))
	require.NotZero(t, ticket.ID)
	assert.Equal(t, time.UTC, ticket.CreatedAt.Location())

	require.NoError(t, repo.UpdateStatus(ctx, ticket.ID, domain.TicketStatusOpen))
	require.NoError(t, repo.UpdateAssignment(ctx, ticket.ID, "network-team@example.com"))
	got, err := repo.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, got.Status)
	assert.Equal(t, "network-team@example.com", got.AssignedTo)
	assert.False(t, got.UpdatedAt.Before(ticket.UpdatedAt))

	listed, err := repo.List(ctx, TicketFilter{Statuses: []domain.TicketStatus{"OPEN"}, SearchTerm: "vpn"})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, ticket.ID, listed[0].ID)

	_, err = repo.GetByID(ctx, ticket.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.UpdatePriority(ctx, ticket.ID+100, domain.TicketPriorityHigh), ErrNotFound)
}

func TestPostgresTicketHistoryRepository(t *testing.T) {
	pool := newPostgresPool(t)
	tickets := NewTicketRepository(pool)
	history := NewTicketHistoryRepository(pool)
	ctx := context.Background()

	ticket := &domain.Ticket{Sender: "bob@corp.test", Issue: "printer", Category: domain.CategoryGeneral, Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusNew}
	require.NoError(t, tickets.Create(ctx, ticket))

	first := &domain.TicketHistory{TicketID: ticket.ID, ChangedBy: domain.ActorSystem, ChangeType: domain.ChangeTypeStatus, OldValue: "New", NewValue: "Open"}
	second := &domain.TicketHistory{TicketID: ticket.ID, ChangedBy: "ops@corp.test", ChangeType: domain.ChangeTypeAssignee, OldValue: "", NewValue: "noc@corp.test"}
	require.NoError(t, history.Create(ctx, first))
	require.NoError(t, history.Create(ctx, second))

	entries, err := history.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, first.ID, entries[0].ID)
	assert.Equal(t, "ops@corp.test", entries[1].ChangedBy)

	empty, err := history.ListByTicket(ctx, ticket.ID+100)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
