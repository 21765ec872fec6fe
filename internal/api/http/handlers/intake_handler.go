package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/intake"
	"github.com/spec-kit/servicedesk/internal/service"
	apperrors "github.com/spec-kit/servicedesk/pkg/util/errorutil"
)

// IntakeHandler accepts inbound messages and triggers intake passes.
type IntakeHandler struct {
	intake *service.IntakeService
}

func NewIntakeHandler(intakeService *service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intake: intakeService}
}

// Ingest POST /api/intake. Duplicates answer 200 with a null ticket.
func (h *IntakeHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IntakeMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Subject == "" && req.Body == "" {
		return apperrors.NewValidationError("subject or body required", nil)
	}
	ticket, err := h.intake.Ingest(c.UserContext(), intake.Message{
		Sender:   req.Sender,
		Subject:  req.Subject,
		Body:     req.Body,
		SourceID: req.SourceID,
	})
	if err != nil {
		return err
	}
	if ticket == nil {
		return c.JSON(fiber.Map{"data": nil, "duplicate": true})
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket), "duplicate": false})
}

// Process POST /api/intake/process runs one pass over the configured source.
func (h *IntakeHandler) Process(c *fiber.Ctx) error {
	result, err := h.intake.Process(c.UserContext())
	if err != nil {
		return err
	}
	tickets := make([]dto.TicketResponse, 0, len(result.Created))
	for i := range result.Created {
		tickets = append(tickets, ticketResponse(&result.Created[i]))
	}
	return c.JSON(fiber.Map{"data": dto.IntakeProcessResponse{
		Source:    result.Source,
		Fetched:   result.Fetched,
		Created:   len(result.Created),
		Duplicate: result.Duplicate,
		Failed:    result.Failed,
		Tickets:   tickets,
	}})
}

// Reset POST /api/intake/reset forgets processed messages.
func (h *IntakeHandler) Reset(c *fiber.Ctx) error {
	if err := h.intake.Reset(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reset": true}})
}
