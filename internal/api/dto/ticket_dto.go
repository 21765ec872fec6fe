package dto

import (
	"time"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// CreateTicketRequest payload. Category and priority are classified from
// the issue text when omitted.
type CreateTicketRequest struct {
	Sender   string                `json:"sender"`
	Issue    string                `json:"issue"`
	Category string                `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo string `json:"assigned_to"`
}

// TicketResponse is a ticket with its SLA state.
type TicketResponse struct {
	ID              int64                 `json:"id"`
	Sender          string                `json:"sender"`
	Issue           string                `json:"issue"`
	Category        string                `json:"category"`
	Priority        domain.TicketPriority `json:"priority"`
	Status          domain.TicketStatus   `json:"status"`
	AssignedTo      string                `json:"assigned_to"`
	SourceMessageID string                `json:"source_message_id,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	SLA             *SLAResponse          `json:"sla,omitempty"`
}

// SLAResponse renders an SLA snapshot. TimeToBreachSeconds is null for
// tickets that can no longer breach.
type SLAResponse struct {
	ResponseDue         time.Time `json:"response_due"`
	ResolutionDue       time.Time `json:"resolution_due"`
	ResponseOK          bool      `json:"response_ok"`
	ResolutionOK        bool      `json:"resolution_ok"`
	Breached            bool      `json:"breached"`
	TimeToBreachSeconds *int64    `json:"time_to_breach_seconds"`
}

// TicketStatsResponse dashboard counters.
type TicketStatsResponse struct {
	Total      int            `json:"total"`
	Open       int            `json:"open"`
	Resolved   int            `json:"resolved"`
	ByPriority map[string]int `json:"by_priority"`
	ByCategory map[string]int `json:"by_category"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID         int64                   `json:"id"`
	ChangedBy  string                  `json:"changed_by"`
	ChangeType domain.TicketChangeType `json:"change_type"`
	OldValue   string                  `json:"old_value"`
	NewValue   string                  `json:"new_value"`
	CreatedAt  time.Time               `json:"created_at"`
}
