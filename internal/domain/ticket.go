package domain

import (
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew       TicketStatus = "New"
	TicketStatusOpen      TicketStatus = "Open"
	TicketStatusClosed    TicketStatus = "Closed"
	TicketStatusEscalated TicketStatus = "Escalated"
	// TicketStatusResolved is never assigned by the engine but rows carrying
	// it are treated as terminal.
	TicketStatusResolved TicketStatus = "Resolved"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// Well-known categories produced by the classifier.
const (
	CategoryAccess         = "Access Issue"
	CategoryNetworking     = "Networking"
	CategoryInfrastructure = "Infrastructure"
	CategoryEmail          = "Email"
	CategorySoftware       = "Software"
	CategoryGeneral        = "General"
)

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID              int64
	Sender          string
	Issue           string
	Category        string
	Priority        TicketPriority
	Status          TicketStatus
	AssignedTo      string
	SourceMessageID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal reports whether the ticket no longer counts against SLAs or workload.
func (t Ticket) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// IsTerminal reports membership in the terminal set {Closed, Resolved}.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusResolved
}

// ParsePriority maps free input onto the closed priority set, defaulting to Medium.
func ParsePriority(raw string) TicketPriority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return TicketPriorityLow
	case "medium":
		return TicketPriorityMedium
	case "high":
		return TicketPriorityHigh
	default:
		return TicketPriorityMedium
	}
}

// ParseStatus maps free input onto the closed status set, defaulting to Open.
func ParseStatus(raw string) TicketStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new":
		return TicketStatusNew
	case "open":
		return TicketStatusOpen
	case "closed":
		return TicketStatusClosed
	case "escalated":
		return TicketStatusEscalated
	case "resolved":
		return TicketStatusResolved
	default:
		return TicketStatusOpen
	}
}
