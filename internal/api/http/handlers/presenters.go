package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:              ticket.ID,
		Sender:          ticket.Sender,
		Issue:           ticket.Issue,
		Category:        ticket.Category,
		Priority:        ticket.Priority,
		Status:          ticket.Status,
		AssignedTo:      ticket.AssignedTo,
		SourceMessageID: ticket.SourceMessageID,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func ticketViewResponse(view *service.TicketView) dto.TicketResponse {
	resp := ticketResponse(&view.Ticket)
	resp.SLA = slaResponse(view.SLA)
	return resp
}

func slaResponse(snapshot domain.SLASnapshot) *dto.SLAResponse {
	resp := &dto.SLAResponse{
		ResponseDue:   snapshot.ResponseDue,
		ResolutionDue: snapshot.ResolutionDue,
		ResponseOK:    snapshot.ResponseOK,
		ResolutionOK:  snapshot.ResolutionOK,
		Breached:      snapshot.Breached,
	}
	if snapshot.TimeToBreach != domain.NoBreach {
		seconds := int64(snapshot.TimeToBreach.Seconds())
		resp.TimeToBreachSeconds = &seconds
	}
	return resp
}

func ticketViewResponses(views []service.TicketView) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(views))
	for i := range views {
		items = append(items, ticketViewResponse(&views[i]))
	}
	return items
}

func parseTicketID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid ticket id", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}

func splitQuery(val string) []string {
	if val == "" {
		return nil
	}
	var parts []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
