package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

func TestRoute(t *testing.T) {
	svc := NewAssignmentService(nil, testRouting())
	assert.Equal(t, "network-team@example.com", svc.Route(domain.CategoryNetworking))
	assert.Equal(t, "helpdesk@example.com", svc.Route("Facilities"), "unknown categories go to General")
}

func TestRouteWithoutGeneralEntry(t *testing.T) {
	svc := NewAssignmentService(nil, config.RoutingConfig{
		Teams: map[string]string{domain.CategoryEmail: "mail@corp.test"},
	})
	assert.Equal(t, "mail@corp.test", svc.Route(domain.CategoryEmail))
	assert.Equal(t, FallbackTeamAddress, svc.Route("Facilities"))

	custom := NewAssignmentService(nil, config.RoutingConfig{DefaultAddress: "desk@corp.test"})
	assert.Equal(t, "desk@corp.test", custom.Route(domain.CategoryGeneral))
}

func TestTeamsReturnsCopy(t *testing.T) {
	svc := NewAssignmentService(nil, testRouting())
	teams := svc.Teams()
	teams[domain.CategoryEmail] = "changed@corp.test"
	assert.Equal(t, "messaging-team@example.com", svc.Route(domain.CategoryEmail))
}

func TestCountWorkload(t *testing.T) {
	tickets := []domain.Ticket{
		{Status: domain.TicketStatusOpen, AssignedTo: "A"},
		{Status: domain.TicketStatusClosed, AssignedTo: "A"},
		{Status: domain.TicketStatusEscalated, AssignedTo: "B"},
		{Status: domain.TicketStatusResolved, AssignedTo: "B"},
		{Status: domain.TicketStatusOpen},
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, CountWorkload(tickets))
	assert.Empty(t, CountWorkload(nil))
}

func TestWorkloadReadsStore(t *testing.T) {
	repo := repository.NewMemoryTicketRepository(clock.Fake(epoch))
	ctx := context.Background()
	for _, ticket := range []domain.Ticket{
		{Issue: "a", Status: domain.TicketStatusOpen, AssignedTo: "net@corp.test"},
		{Issue: "b", Status: domain.TicketStatusOpen, AssignedTo: "net@corp.test"},
		{Issue: "c", Status: domain.TicketStatusClosed, AssignedTo: "infra@corp.test"},
	} {
		ticket := ticket
		require.NoError(t, repo.Create(ctx, &ticket))
	}

	workload, err := NewAssignmentService(repo, testRouting()).Workload(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"net@corp.test": 2}, workload)
}
