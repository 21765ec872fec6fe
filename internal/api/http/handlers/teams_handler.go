package handlers

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/servicedesk/internal/api/dto"
	"github.com/spec-kit/servicedesk/internal/service"
)

// TeamsHandler exposes the routing table and team load.
type TeamsHandler struct {
	assignment *service.AssignmentService
}

func NewTeamsHandler(assignment *service.AssignmentService) *TeamsHandler {
	return &TeamsHandler{assignment: assignment}
}

// Teams GET /api/teams.
func (h *TeamsHandler) Teams(c *fiber.Ctx) error {
	teams := h.assignment.Teams()
	items := make([]dto.TeamResponse, 0, len(teams))
	for category, address := range teams {
		items = append(items, dto.TeamResponse{Category: category, Address: address})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Category < items[j].Category })
	return c.JSON(fiber.Map{"data": items})
}

// Workload GET /api/teams/workload. Routed teams without open tickets
// report zero.
func (h *TeamsHandler) Workload(c *fiber.Ctx) error {
	counts, err := h.assignment.Workload(c.UserContext())
	if err != nil {
		return err
	}
	workload := make(map[string]int, len(counts))
	for _, address := range h.assignment.Teams() {
		workload[address] = 0
	}
	for address, n := range counts {
		workload[address] = n
	}
	return c.JSON(fiber.Map{"data": workload})
}
