package events

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketResolved  EventType = "ticket_resolved"
	EventTicketEscalated EventType = "ticket_escalated"
	EventSLANearBreach   EventType = "sla_near_breach"
)

// Event represents a notification-worthy occurrence emitted by services.
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	TicketID  int64         `json:"ticket_id"`
	Timestamp time.Time     `json:"timestamp"`
	Payload   TicketPayload `json:"payload"`
}

// TicketPayload carries the ticket snapshot and who should hear about it.
type TicketPayload struct {
	Recipient  string                `json:"recipient"`
	Sender     string                `json:"sender"`
	Issue      string                `json:"issue"`
	Category   string                `json:"category"`
	Priority   domain.TicketPriority `json:"priority"`
	Status     domain.TicketStatus   `json:"status"`
	AssignedTo string                `json:"assigned_to,omitempty"`
}

// PayloadFor builds a payload from a ticket.
func PayloadFor(ticket domain.Ticket, recipient string) TicketPayload {
	return TicketPayload{
		Recipient:  recipient,
		Sender:     ticket.Sender,
		Issue:      ticket.Issue,
		Category:   ticket.Category,
		Priority:   ticket.Priority,
		Status:     ticket.Status,
		AssignedTo: ticket.AssignedTo,
	}
}
