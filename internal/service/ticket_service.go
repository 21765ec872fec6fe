package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// TicketService runs the ticket lifecycle: the creation pipeline, manual
// transitions and read-side queries.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	classifier *Classifier
	assignment *AssignmentService
	sla        *SLAService
	notifier   Notifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      clock.Clock
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	Classifier  *Classifier
	Assignment  *AssignmentService
	SLA         *SLAService
	Notifier    Notifier
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Clock       clock.Clock
}

// TicketCreateInput describes a new ticket. When both Category and Priority
// are empty they are classified from Issue; a single missing one defaults to
// General or Medium.
type TicketCreateInput struct {
	Sender          string
	Issue           string
	Category        string
	Priority        domain.TicketPriority
	SourceMessageID string
}

// TicketView is a ticket with its SLA state at read time.
type TicketView struct {
	domain.Ticket
	SLA domain.SLASnapshot
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	s := &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		classifier: deps.Classifier,
		assignment: deps.Assignment,
		sla:        deps.SLA,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}
	if s.classifier == nil {
		s.classifier = NewClassifier(nil)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.sla == nil {
		s.sla = NewSLAService(DefaultSLAConfig(), s.logger)
	}
	return s
}

// Create runs the creation pipeline: persist as New, apply the initial
// status for the priority, route to the owning team, then notify. The
// created notice always goes out; auto-closed tickets also get the resolved
// notice and escalated ones alert the team.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	issue := strings.TrimSpace(input.Issue)
	if issue == "" {
		return nil, errorutil.NewValidationError("issue is required", nil)
	}
	sender := strings.TrimSpace(input.Sender)
	if sender == "" {
		sender = "unknown"
	}

	// The classifier's pair is used whole; a caller who supplies one half
	// gets the neutral default for the other.
	category, priority := strings.TrimSpace(input.Category), input.Priority
	switch {
	case category == "" && strings.TrimSpace(string(priority)) == "":
		category, priority = s.classifier.Classify(issue)
	case category == "":
		category = domain.CategoryGeneral
	}
	priority = domain.ParsePriority(string(priority))

	ticket := &domain.Ticket{
		Sender:          sender,
		Issue:           issue,
		Category:        category,
		Priority:        priority,
		Status:          domain.TicketStatusNew,
		SourceMessageID: input.SourceMessageID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	status := InitialStatus(priority)
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, status); err != nil {
		return nil, err
	}
	s.record(ctx, domain.ActorSystem, ticket.ID, domain.ChangeTypeStatus, string(domain.TicketStatusNew), string(status))
	team := s.route(category)
	if err := s.tickets.UpdateAssignment(ctx, ticket.ID, team); err != nil {
		return nil, err
	}
	s.record(ctx, domain.ActorSystem, ticket.ID, domain.ChangeTypeAssignee, "", team)

	created, err := s.load(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("ticket created",
		zap.Int64("ticket_id", created.ID),
		zap.String("category", created.Category),
		zap.String("priority", string(created.Priority)),
		zap.String("status", string(created.Status)),
		zap.String("assigned_to", created.AssignedTo))
	s.metrics.RecordTicketCreated(created.Category, string(created.Priority), string(created.Status))

	s.notify(ctx, "created", created.ID, func(n Notifier) error { return n.NotifyCreated(ctx, *created) })
	switch created.Status {
	case domain.TicketStatusClosed:
		s.notify(ctx, "resolved", created.ID, func(n Notifier) error { return n.NotifyResolved(ctx, *created) })
	case domain.TicketStatusEscalated:
		s.notify(ctx, "escalated", created.ID, func(n Notifier) error { return n.NotifyEscalated(ctx, *created, team) })
	}
	return created, nil
}

// Resolve closes the ticket and tells the sender.
func (s *TicketService) Resolve(ctx context.Context, id int64) (*domain.Ticket, error) {
	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusClosed); err != nil {
		return nil, s.mapErr(err, id)
	}
	s.recordStatus(ctx, before, domain.TicketStatusClosed)
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordTransition("resolve")
	s.logger.Info("ticket resolved", zap.Int64("ticket_id", id))
	s.notify(ctx, "resolved", id, func(n Notifier) error { return n.NotifyResolved(ctx, *ticket) })
	return ticket, nil
}

// Escalate marks the ticket Escalated, raises its priority to High and
// notifies the team that owns its category.
func (s *TicketService) Escalate(ctx context.Context, id int64) (*domain.Ticket, error) {
	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusEscalated); err != nil {
		return nil, s.mapErr(err, id)
	}
	s.recordStatus(ctx, before, domain.TicketStatusEscalated)
	if err := s.tickets.UpdatePriority(ctx, id, domain.TicketPriorityHigh); err != nil {
		return nil, s.mapErr(err, id)
	}
	s.record(ctx, ActorFromContext(ctx), id, domain.ChangeTypePriority, string(before.Priority), string(domain.TicketPriorityHigh))
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	team := s.route(ticket.Category)
	s.metrics.RecordTransition("escalate")
	s.logger.Info("ticket escalated", zap.Int64("ticket_id", id), zap.String("team", team))
	s.notify(ctx, "escalated", id, func(n Notifier) error { return n.NotifyEscalated(ctx, *ticket, team) })
	return ticket, nil
}

// Reopen puts the ticket back to Open from any status.
func (s *TicketService) Reopen(ctx context.Context, id int64) (*domain.Ticket, error) {
	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateStatus(ctx, id, domain.TicketStatusOpen); err != nil {
		return nil, s.mapErr(err, id)
	}
	s.recordStatus(ctx, before, domain.TicketStatusOpen)
	s.metrics.RecordTransition("reopen")
	s.logger.Info("ticket reopened", zap.Int64("ticket_id", id))
	return s.load(ctx, id)
}

// Reassign sets the ticket owner. A blank owner is rejected before the
// ticket is looked up.
func (s *TicketService) Reassign(ctx context.Context, id int64, owner string) (*domain.Ticket, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, errorutil.NewValidationError("assignee is required", map[string]any{"ticket_id": id})
	}
	before, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdateAssignment(ctx, id, owner); err != nil {
		return nil, s.mapErr(err, id)
	}
	s.record(ctx, ActorFromContext(ctx), id, domain.ChangeTypeAssignee, before.AssignedTo, owner)
	s.metrics.RecordTransition("reassign")
	s.logger.Info("ticket reassigned", zap.Int64("ticket_id", id), zap.String("assigned_to", owner))
	return s.load(ctx, id)
}

// Get returns the ticket with its SLA snapshot at the current time.
func (s *TicketService) Get(ctx context.Context, id int64) (*TicketView, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TicketView{Ticket: *ticket, SLA: s.sla.Status(*ticket, s.clock.Now())}, nil
}

// List returns tickets matching filter, newest first, each with its SLA
// snapshot computed against a single now.
func (s *TicketService) List(ctx context.Context, filter repository.TicketFilter) ([]TicketView, error) {
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.views(tickets), nil
}

// Search matches query against issue text and sender.
func (s *TicketService) Search(ctx context.Context, query string, limit int) ([]TicketView, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errorutil.NewValidationError("search query is required", nil)
	}
	return s.List(ctx, repository.TicketFilter{SearchTerm: query, Limit: limit})
}

// Stats reports ticket counts by status group, priority and category.
func (s *TicketService) Stats(ctx context.Context) (domain.TicketStats, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return domain.TicketStats{}, err
	}
	stats := domain.TicketStats{
		Total:      len(tickets),
		ByPriority: map[string]int{},
		ByCategory: map[string]int{},
	}
	for _, ticket := range tickets {
		if ticket.IsTerminal() {
			stats.Resolved++
		} else {
			stats.Open++
		}
		stats.ByPriority[string(ticket.Priority)]++
		stats.ByCategory[ticket.Category]++
	}
	return stats, nil
}

// SLASummary aggregates compliance across every ticket.
func (s *TicketService) SLASummary(ctx context.Context) (domain.SLASummary, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return domain.SLASummary{}, err
	}
	return s.sla.Summary(tickets, s.clock.Now()), nil
}

// Workload counts open tickets per assignee.
func (s *TicketService) Workload(ctx context.Context) (map[string]int, error) {
	if s.assignment == nil {
		tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
		if err != nil {
			return nil, err
		}
		return CountWorkload(tickets), nil
	}
	return s.assignment.Workload(ctx)
}

// History returns the audit trail of a ticket, oldest first.
func (s *TicketService) History(ctx context.Context, id int64) ([]domain.TicketHistory, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	return s.history.ListByTicket(ctx, id)
}

// OpenTickets lists every non-terminal ticket ordered by ID.
func (s *TicketService) OpenTickets(ctx context.Context) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	open := make([]domain.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		if !ticket.IsTerminal() {
			open = append(open, ticket)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID < open[j].ID })
	return open, nil
}

func (s *TicketService) views(tickets []domain.Ticket) []TicketView {
	now := s.clock.Now()
	views := make([]TicketView, 0, len(tickets))
	for _, ticket := range tickets {
		views = append(views, TicketView{Ticket: ticket, SLA: s.sla.Status(ticket, now)})
	}
	return views
}

func (s *TicketService) route(category string) string {
	if s.assignment == nil {
		return FallbackTeamAddress
	}
	return s.assignment.Route(category)
}

func (s *TicketService) recordStatus(ctx context.Context, before *domain.Ticket, status domain.TicketStatus) {
	s.record(ctx, ActorFromContext(ctx), before.ID, domain.ChangeTypeStatus, string(before.Status), string(status))
}

// record appends an audit entry when the value changed. Audit failures are
// logged and never fail the mutation.
func (s *TicketService) record(ctx context.Context, actor string, id int64, change domain.TicketChangeType, oldValue, newValue string) {
	if s.history == nil || oldValue == newValue {
		return
	}
	entry := &domain.TicketHistory{TicketID: id, ChangedBy: actor, ChangeType: change, OldValue: oldValue, NewValue: newValue}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("ticket history not recorded",
			zap.Int64("ticket_id", id),
			zap.String("change", string(change)),
			zap.Error(err))
	}
}

func (s *TicketService) load(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, id)
	}
	return ticket, nil
}

func (s *TicketService) mapErr(err error, id int64) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errorutil.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return err
}

// notify runs a notifier call. Failures are logged and never abort the
// operation that triggered them.
func (s *TicketService) notify(ctx context.Context, kind string, id int64, call func(Notifier) error) {
	if s.notifier == nil {
		return
	}
	if err := call(s.notifier); err != nil {
		s.logger.Warn("notification failed",
			zap.String("kind", kind),
			zap.Int64("ticket_id", id),
			zap.Error(err))
	}
}
