package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestInitialStatus(t *testing.T) {
	cases := map[domain.TicketPriority]domain.TicketStatus{
		domain.TicketPriorityHigh:   domain.TicketStatusEscalated,
		domain.TicketPriorityMedium: domain.TicketStatusOpen,
		domain.TicketPriorityLow:    domain.TicketStatusClosed,
		"low":                       domain.TicketStatusClosed,
		"Critical":                  domain.TicketStatusOpen,
		"":                          domain.TicketStatusOpen,
	}
	for priority, want := range cases {
		assert.Equal(t, want, InitialStatus(priority), "priority %q", priority)
	}
}
