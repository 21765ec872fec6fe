package worker

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/service"
)

// DefaultNearBreachThreshold is the warning window before a resolution deadline.
const DefaultNearBreachThreshold = 30 * time.Minute

// TicketLister returns the tickets a sweep should consider.
type TicketLister interface {
	OpenTickets(ctx context.Context) ([]domain.Ticket, error)
}

// Router names the team that owns a category.
type Router interface {
	Route(category string) string
}

// SLACalculator computes a ticket's SLA state at now.
type SLACalculator interface {
	Status(ticket domain.Ticket, now time.Time) domain.SLASnapshot
}

// SweepItem is one ticket flagged by a sweep.
type SweepItem struct {
	Ticket   domain.Ticket
	Snapshot domain.SLASnapshot
}

// SweepPlan is the outcome of evaluating a ticket set.
type SweepPlan struct {
	AtRisk   []SweepItem
	Breached []SweepItem
}

// SweepResult reports counts from one sweep.
type SweepResult struct {
	AtRisk   int `json:"at_risk"`
	Breached int `json:"breached"`
}

// EvaluateSweep partitions non-terminal tickets into near-breach and
// breached sets at now. The sets are disjoint; output is ordered by ID.
func EvaluateSweep(tickets []domain.Ticket, now time.Time, threshold time.Duration, calc SLACalculator) SweepPlan {
	sorted := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if !ticket.IsTerminal() {
			sorted = append(sorted, ticket)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	var plan SweepPlan
	for _, ticket := range sorted {
		snapshot := calc.Status(ticket, now)
		switch {
		case snapshot.Breached:
			plan.Breached = append(plan.Breached, SweepItem{Ticket: ticket, Snapshot: snapshot})
		case snapshot.TimeToBreach < threshold:
			plan.AtRisk = append(plan.AtRisk, SweepItem{Ticket: ticket, Snapshot: snapshot})
		}
	}
	return plan
}

// SLAWorkerDependencies bundles the sweeper's collaborators.
type SLAWorkerDependencies struct {
	Tickets   TicketLister
	Router    Router
	SLA       SLACalculator
	Notifier  service.Notifier
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Clock     clock.Clock
	Interval  time.Duration
	Threshold time.Duration
}

// SLAWorker periodically re-evaluates open tickets against their SLA.
type SLAWorker struct {
	tickets   TicketLister
	router    Router
	sla       SLACalculator
	notifier  service.Notifier
	logger    *zap.Logger
	metrics   *observability.Metrics
	clock     clock.Clock
	interval  time.Duration
	threshold time.Duration
}

func NewSLAWorker(deps SLAWorkerDependencies) *SLAWorker {
	w := &SLAWorker{
		tickets:   deps.Tickets,
		router:    deps.Router,
		sla:       deps.SLA,
		notifier:  deps.Notifier,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		interval:  deps.Interval,
		threshold: deps.Threshold,
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	if w.clock == nil {
		w.clock = clock.Real()
	}
	if w.interval <= 0 {
		w.interval = 5 * time.Minute
	}
	if w.threshold <= 0 {
		w.threshold = DefaultNearBreachThreshold
	}
	return w
}

// RunOnce performs a single sweep. Notification failures are logged per
// ticket and do not stop the sweep; a store failure is returned.
func (w *SLAWorker) RunOnce(ctx context.Context) (SweepResult, error) {
	now := w.clock.Now()
	tickets, err := w.tickets.OpenTickets(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	plan := EvaluateSweep(tickets, now, w.threshold, w.sla)

	for _, item := range plan.AtRisk {
		if err := ctx.Err(); err != nil {
			return SweepResult{}, err
		}
		team := w.router.Route(item.Ticket.Category)
		if w.notifier == nil {
			continue
		}
		if err := w.notifier.NotifyNearBreach(ctx, item.Ticket, team); err != nil {
			w.logger.Warn("near-breach notification failed",
				zap.Int64("ticket_id", item.Ticket.ID),
				zap.String("team", team),
				zap.Error(err))
		}
	}
	for _, item := range plan.Breached {
		w.logger.Warn("sla breached",
			zap.Int64("ticket_id", item.Ticket.ID),
			zap.String("priority", string(item.Ticket.Priority)),
			zap.Time("resolution_due", item.Snapshot.ResolutionDue))
	}

	result := SweepResult{AtRisk: len(plan.AtRisk), Breached: len(plan.Breached)}
	w.metrics.RecordSweep(result.AtRisk, result.Breached)
	w.logger.Info("sla sweep complete",
		zap.Int("scanned", len(tickets)),
		zap.Int("at_risk", result.AtRisk),
		zap.Int("breached", result.Breached))
	return result, nil
}

// Run sweeps on every tick until ctx is cancelled.
func (w *SLAWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("sla sweeper started",
		zap.Duration("interval", w.interval),
		zap.Duration("threshold", w.threshold))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("sla sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("sla sweep failed", zap.Error(err))
			}
		}
	}
}
