package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/service"
	"github.com/spec-kit/servicedesk/internal/worker"
)

// Sweeper runs a single SLA sweep.
type Sweeper interface {
	RunOnce(ctx context.Context) (worker.SweepResult, error)
}

// SLAHandler reports SLA compliance and triggers sweeps on demand.
type SLAHandler struct {
	tickets *service.TicketService
	sweeper Sweeper
}

func NewSLAHandler(tickets *service.TicketService, sweeper Sweeper) *SLAHandler {
	return &SLAHandler{tickets: tickets, sweeper: sweeper}
}

// Summary GET /api/sla.
func (h *SLAHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.tickets.SLASummary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SLASummaryResponse{
		Total:          summary.Total,
		Compliant:      summary.Compliant,
		AtRisk:         summary.AtRisk,
		Breached:       summary.Breached,
		ComplianceRate: summary.ComplianceRate,
	}})
}

// Check POST /api/sla/check runs one sweep now.
func (h *SLAHandler) Check(c *fiber.Ctx) error {
	result, err := h.sweeper.RunOnce(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SweepResponse{AtRisk: result.AtRisk, Breached: result.Breached}})
}
