package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

var epoch = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type notice struct {
	Kind     string
	TicketID int64
	Team     string
}

// recordingNotifier captures notifier calls. When fail is set every call
// returns an error after being recorded.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
	fail    bool
}

func (r *recordingNotifier) record(kind string, ticket domain.Ticket, team string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, notice{Kind: kind, TicketID: ticket.ID, Team: team})
	if r.fail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (r *recordingNotifier) NotifyCreated(_ context.Context, t domain.Ticket) error {
	return r.record("created", t, "")
}

func (r *recordingNotifier) NotifyResolved(_ context.Context, t domain.Ticket) error {
	return r.record("resolved", t, "")
}

func (r *recordingNotifier) NotifyEscalated(_ context.Context, t domain.Ticket, team string) error {
	return r.record("escalated", t, team)
}

func (r *recordingNotifier) NotifyNearBreach(_ context.Context, t domain.Ticket, team string) error {
	return r.record("near_breach", t, team)
}

func (r *recordingNotifier) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.notices))
	for _, n := range r.notices {
		out = append(out, n.Kind)
	}
	return out
}

func testRouting() config.RoutingConfig {
	return config.RoutingConfig{Teams: config.DefaultTeams(), DefaultAddress: FallbackTeamAddress}
}

type ticketFixture struct {
	svc      *TicketService
	repo     repository.TicketRepository
	clock    *clock.FakeClock
	notifier *recordingNotifier
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	clk := clock.Fake(epoch)
	repo := repository.NewMemoryTicketRepository(clk)
	notifier := &recordingNotifier{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  repo,
		HistoryRepo: repository.NewMemoryTicketHistoryRepository(clk),
		Assignment:  NewAssignmentService(repo, testRouting()),
		SLA:         NewSLAService(DefaultSLAConfig(), nil),
		Notifier:    notifier,
		Clock:       clk,
	})
	return &ticketFixture{svc: svc, repo: repo, clock: clk, notifier: notifier}
}
