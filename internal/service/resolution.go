package service

import (
	"strings"

	"github.com/spec-kit/servicedesk/internal/domain"
)

// InitialStatus is the status a freshly created ticket moves to: low
// priority work is auto-resolved, high priority work is escalated.
func InitialStatus(priority domain.TicketPriority) domain.TicketStatus {
	switch strings.ToLower(string(priority)) {
	case "low":
		return domain.TicketStatusClosed
	case "medium":
		return domain.TicketStatusOpen
	case "high":
		return domain.TicketStatusEscalated
	default:
		return domain.TicketStatusOpen
	}
}
