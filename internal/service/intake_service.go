package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/intake"
	"github.com/spec-kit/servicedesk/internal/observability"
)

const noSubject = "(no subject)"

// IntakeDependencies bundles collaborators for the intake service.
type IntakeDependencies struct {
	Tickets    *TicketService
	Classifier *Classifier
	Source     intake.Source
	Deduper    intake.Deduper
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// IntakeService turns inbound messages into tickets exactly once.
type IntakeService struct {
	tickets    *TicketService
	classifier *Classifier
	source     intake.Source
	deduper    intake.Deduper
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// IntakeResult summarises one processing pass.
type IntakeResult struct {
	Source    string          `json:"source"`
	Fetched   int             `json:"fetched"`
	Duplicate int             `json:"duplicate"`
	Failed    int             `json:"failed"`
	Created   []domain.Ticket `json:"tickets"`
}

func NewIntakeService(deps IntakeDependencies) *IntakeService {
	s := &IntakeService{
		tickets:    deps.Tickets,
		classifier: deps.Classifier,
		source:     deps.Source,
		deduper:    deps.Deduper,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
	if s.classifier == nil {
		s.classifier = NewClassifier(nil)
	}
	if s.deduper == nil {
		s.deduper = intake.NewMemoryDeduper()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Ingest creates a ticket for msg unless it was already processed. The
// returned ticket is nil for duplicates.
func (s *IntakeService) Ingest(ctx context.Context, msg intake.Message) (*domain.Ticket, error) {
	key := msg.Key()
	seen, err := s.deduper.Seen(ctx, key)
	if err != nil {
		s.metrics.RecordIntake("failed")
		return nil, err
	}
	if seen {
		s.metrics.RecordIntake("duplicate")
		return nil, nil
	}

	subject := strings.TrimSpace(msg.Subject)
	if subject == "" {
		subject = noSubject
	}
	category, priority := s.classifier.ClassifyMessage(msg.Subject, msg.Body)
	ticket, err := s.tickets.Create(ctx, TicketCreateInput{
		Sender:          msg.Sender,
		Issue:           subject,
		Category:        category,
		Priority:        priority,
		SourceMessageID: msg.SourceID,
	})
	if err != nil {
		s.metrics.RecordIntake("failed")
		return nil, err
	}
	if err := s.deduper.Mark(ctx, key); err != nil {
		s.logger.Warn("ticket created but message not marked processed",
			zap.Int64("ticket_id", ticket.ID), zap.Error(err))
	}
	s.metrics.RecordIntake("created")
	return ticket, nil
}

// Process fetches from the source and ingests every message. A failing
// message is logged and skipped; only a failing fetch aborts the pass.
func (s *IntakeService) Process(ctx context.Context) (IntakeResult, error) {
	if s.source == nil {
		return IntakeResult{}, nil
	}
	result := IntakeResult{Source: s.source.Name(), Created: []domain.Ticket{}}
	messages, err := s.source.Fetch(ctx)
	if err != nil {
		return result, err
	}
	result.Fetched = len(messages)

	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		ticket, err := s.Ingest(ctx, msg)
		switch {
		case err != nil:
			result.Failed++
			s.logger.Warn("intake message failed", zap.String("sender", msg.Sender), zap.Error(err))
		case ticket == nil:
			result.Duplicate++
		default:
			result.Created = append(result.Created, *ticket)
		}
	}

	s.logger.Info("intake pass complete",
		zap.String("source", result.Source),
		zap.Int("fetched", result.Fetched),
		zap.Int("created", len(result.Created)),
		zap.Int("duplicate", result.Duplicate),
		zap.Int("failed", result.Failed))
	return result, nil
}

// Reset forgets processed messages so the source is read afresh.
func (s *IntakeService) Reset(ctx context.Context) error {
	return s.deduper.Reset(ctx)
}
