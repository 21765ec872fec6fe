package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

const defaultPageSize = 50

// TicketsHandler serves ticket queries and lifecycle operations.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// ListTickets GET /api/tickets?status=&priority=&category=&q=&page=&page_size=.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	views, err := h.service.List(c.UserContext(), parseTicketFilter(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketViewResponses(views)})
}

// SearchTickets GET /api/tickets/search?q=.
func (h *TicketsHandler) SearchTickets(c *fiber.Ctx) error {
	views, err := h.service.Search(c.UserContext(), c.Query("q"), parseInt(c.Query("limit"), defaultPageSize))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketViewResponses(views)})
}

// GetTicket GET /api/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	view, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketViewResponse(view)})
}

// TicketHistory GET /api/tickets/:id/history.
func (h *TicketsHandler) TicketHistory(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), id)
	if err != nil {
		return err
	}
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:         e.ID,
			ChangedBy:  e.ChangedBy,
			ChangeType: e.ChangeType,
			OldValue:   e.OldValue,
			NewValue:   e.NewValue,
			CreatedAt:  e.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateTicket POST /api/tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		Sender:   req.Sender,
		Issue:    req.Issue,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ResolveTicket POST /api/tickets/:id/resolve.
func (h *TicketsHandler) ResolveTicket(c *fiber.Ctx) error {
	return h.transition(c, h.service.Resolve)
}

// EscalateTicket POST /api/tickets/:id/escalate.
func (h *TicketsHandler) EscalateTicket(c *fiber.Ctx) error {
	return h.transition(c, h.service.Escalate)
}

// ReopenTicket POST /api/tickets/:id/reopen.
func (h *TicketsHandler) ReopenTicket(c *fiber.Ctx) error {
	return h.transition(c, h.service.Reopen)
}

// AssignTicket POST /api/tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Reassign(actorContext(c), id, req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Stats GET /api/stats.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketStatsResponse{
		Total:      stats.Total,
		Open:       stats.Open,
		Resolved:   stats.Resolved,
		ByPriority: stats.ByPriority,
		ByCategory: stats.ByCategory,
	}})
}

func (h *TicketsHandler) transition(c *fiber.Ctx, op func(ctx context.Context, id int64) (*domain.Ticket, error)) error {
	id, err := parseTicketID(c)
	if err != nil {
		return err
	}
	ticket, err := op(actorContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// actorContext tags the request context with the authenticated operator.
func actorContext(c *fiber.Ctx) context.Context {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return service.WithActor(c.UserContext(), principal.Email)
	}
	return c.UserContext()
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Category:   c.Query("category"),
		SearchTerm: c.Query("q"),
	}
	for _, status := range splitQuery(c.Query("status")) {
		filter.Statuses = append(filter.Statuses, domain.TicketStatus(status))
	}
	for _, priority := range splitQuery(c.Query("priority")) {
		filter.Priorities = append(filter.Priorities, domain.TicketPriority(priority))
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), defaultPageSize)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}
