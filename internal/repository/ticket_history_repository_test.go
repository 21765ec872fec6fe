package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestMemoryHistoryAppendsInOrder(t *testing.T) {
	clk := clock.Fake(epoch)
	repo := NewMemoryTicketHistoryRepository(clk)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.TicketHistory{TicketID: 1, ChangeType: domain.ChangeTypeStatus, OldValue: "New", NewValue: "Open"}))
	clk.Advance(time.Minute)
	second := &domain.TicketHistory{TicketID: 1, ChangedBy: "ops@corp.test", ChangeType: domain.ChangeTypeAssignee, NewValue: "noc@corp.test"}
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, &domain.TicketHistory{TicketID: 2, ChangeType: domain.ChangeTypeStatus}))

	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, epoch.Add(time.Minute), second.CreatedAt)

	entries, err := repo.ListByTicket(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Open", entries[0].NewValue)
	assert.Equal(t, "ops@corp.test", entries[1].ChangedBy)

	none, err := repo.ListByTicket(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}
