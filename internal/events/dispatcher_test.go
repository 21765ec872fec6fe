package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/servicedesk/internal/domain"
)

func TestPublishRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	boom := errors.New("smtp down")

	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return boom
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventTicketResolved, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestPublishWithoutHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventSLANearBreach}))
}

func TestPayloadFor(t *testing.T) {
	ticket := domain.Ticket{
		ID:         3,
		Sender:     "ann@corp.test",
		Issue:      "Outlook cannot send",
		Category:   domain.CategoryEmail,
		Priority:   domain.TicketPriorityMedium,
		Status:     domain.TicketStatusOpen,
		AssignedTo: "messaging-team@example.com",
	}
	p := PayloadFor(ticket, "ann@corp.test")
	assert.Equal(t, "ann@corp.test", p.Recipient)
	assert.Equal(t, domain.CategoryEmail, p.Category)
	assert.Equal(t, "messaging-team@example.com", p.AssignedTo)
}
