package service

import (
	"context"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
	"github.com/spec-kit/servicedesk/internal/repository"
)

// FallbackTeamAddress is used when neither the category nor General is routed.
const FallbackTeamAddress = "helpdesk@example.com"

// AssignmentService routes tickets to owning teams and reports team load.
type AssignmentService struct {
	tickets        repository.TicketRepository
	teams          map[string]string
	defaultAddress string
}

// NewAssignmentService creates the service.
func NewAssignmentService(tickets repository.TicketRepository, cfg config.RoutingConfig) *AssignmentService {
	teams := make(map[string]string, len(cfg.Teams))
	for category, address := range cfg.Teams {
		teams[category] = address
	}
	fallback := cfg.DefaultAddress
	if fallback == "" {
		fallback = FallbackTeamAddress
	}
	return &AssignmentService{tickets: tickets, teams: teams, defaultAddress: fallback}
}

// Route returns the owning team for category. Unknown categories go to the
// General team, or the default helpdesk address when General is unrouted.
func (s *AssignmentService) Route(category string) string {
	if address, ok := s.teams[category]; ok && address != "" {
		return address
	}
	if address, ok := s.teams[domain.CategoryGeneral]; ok && address != "" {
		return address
	}
	return s.defaultAddress
}

// Teams returns a copy of the routing table.
func (s *AssignmentService) Teams() map[string]string {
	out := make(map[string]string, len(s.teams))
	for category, address := range s.teams {
		out[category] = address
	}
	return out
}

// Workload counts non-terminal tickets per assignee.
func (s *AssignmentService) Workload(ctx context.Context) (map[string]int, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	return CountWorkload(tickets), nil
}

// CountWorkload groups non-terminal tickets by AssignedTo. Unassigned
// tickets are not counted.
func CountWorkload(tickets []domain.Ticket) map[string]int {
	workload := map[string]int{}
	for _, ticket := range tickets {
		if ticket.IsTerminal() || ticket.AssignedTo == "" {
			continue
		}
		workload[ticket.AssignedTo]++
	}
	return workload
}
