package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/events"
	"github.com/spec-kit/servicedesk/internal/notify"
	"github.com/spec-kit/servicedesk/internal/observability"
)

// Notifier tells people about ticket lifecycle changes. Implementations may
// fail; callers decide whether a failure matters.
type Notifier interface {
	NotifyCreated(ctx context.Context, ticket domain.Ticket) error
	NotifyResolved(ctx context.Context, ticket domain.Ticket) error
	NotifyEscalated(ctx context.Context, ticket domain.Ticket, team string) error
	NotifyNearBreach(ctx context.Context, ticket domain.Ticket, team string) error
}

// MailSender delivers a rendered HTML message.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// WebhookSender posts a JSON payload.
type WebhookSender interface {
	Post(ctx context.Context, payload any) error
}

// NotificationDependencies bundles the notification channels.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	Mailer     MailSender
	Webhook    WebhookSender
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      clock.Clock
}

// NotificationService implements Notifier by publishing events on the
// dispatcher. Subscribed handlers log, mail and call the webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	mailer     MailSender
	webhook    WebhookSender
	logger     *zap.Logger
	metrics    *observability.Metrics
	clock      clock.Clock
}

// NewNotificationService creates the service. A nil dispatcher gets a
// private in-memory one.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	n := &NotificationService{
		dispatcher: deps.Dispatcher,
		mailer:     deps.Mailer,
		webhook:    deps.Webhook,
		logger:     deps.Logger,
		metrics:    deps.Metrics,
		clock:      deps.Clock,
	}
	if n.dispatcher == nil {
		n.dispatcher = events.NewInMemoryDispatcher()
	}
	if n.logger == nil {
		n.logger = zap.NewNop()
	}
	if n.clock == nil {
		n.clock = clock.Real()
	}
	return n
}

// RegisterHandlers subscribes the log, mail and webhook handlers to every
// event type.
func (n *NotificationService) RegisterHandlers() {
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketResolved,
		events.EventTicketEscalated,
		events.EventSLANearBreach,
	} {
		n.dispatcher.Subscribe(eventType, n.handleLog)
		if n.mailer != nil {
			n.dispatcher.Subscribe(eventType, n.handleMail)
		}
		if n.webhook != nil {
			n.dispatcher.Subscribe(eventType, n.handleWebhook)
		}
	}
}

func (n *NotificationService) NotifyCreated(ctx context.Context, ticket domain.Ticket) error {
	return n.publish(ctx, events.EventTicketCreated, ticket, ticket.Sender)
}

func (n *NotificationService) NotifyResolved(ctx context.Context, ticket domain.Ticket) error {
	return n.publish(ctx, events.EventTicketResolved, ticket, ticket.Sender)
}

func (n *NotificationService) NotifyEscalated(ctx context.Context, ticket domain.Ticket, team string) error {
	return n.publish(ctx, events.EventTicketEscalated, ticket, team)
}

func (n *NotificationService) NotifyNearBreach(ctx context.Context, ticket domain.Ticket, team string) error {
	return n.publish(ctx, events.EventSLANearBreach, ticket, team)
}

func (n *NotificationService) publish(ctx context.Context, eventType events.EventType, ticket domain.Ticket, recipient string) error {
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TicketID:  ticket.ID,
		Timestamp: n.clock.Now(),
		Payload:   events.PayloadFor(ticket, recipient),
	}
	if err := n.dispatcher.Publish(ctx, event); err != nil {
		n.metrics.RecordNotificationFailure(string(eventType))
		return err
	}
	return nil
}

func (n *NotificationService) handleLog(_ context.Context, event events.Event) error {
	n.logger.Info("notification",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID),
		zap.String("recipient", event.Payload.Recipient),
		zap.String("priority", string(event.Payload.Priority)),
		zap.String("status", string(event.Payload.Status)))
	return nil
}

func (n *NotificationService) handleMail(ctx context.Context, event events.Event) error {
	if event.Payload.Recipient == "" {
		n.logger.Debug("no mail recipient", zap.Int64("ticket_id", event.TicketID))
		return nil
	}
	subject, body, err := notify.Render(event)
	if err != nil {
		return err
	}
	return n.mailer.Send(ctx, event.Payload.Recipient, subject, body)
}

func (n *NotificationService) handleWebhook(ctx context.Context, event events.Event) error {
	return n.webhook.Post(ctx, event)
}
