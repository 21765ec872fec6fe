package service

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/domain"
)

// summaryAtRiskWindow is how close to breach a ticket must be to count as
// at risk in SLA summaries.
const summaryAtRiskWindow = time.Hour

// SLAService computes SLA deadlines and compliance snapshots.
type SLAService struct {
	windows       map[domain.TicketPriority]domain.SLAWindow
	defaultWindow domain.SLAWindow
	logger        *zap.Logger
}

// DefaultSLAConfig mirrors the built-in per-priority windows.
func DefaultSLAConfig() config.SLAConfig {
	return config.SLAConfig{
		Windows: map[string]config.SLAWindowHours{
			"High":   {Response: 1, Resolution: 4},
			"Medium": {Response: 4, Resolution: 24},
			"Low":    {Response: 24, Resolution: 72},
		},
		Default: config.SLAWindowHours{Response: 24, Resolution: 72},
	}
}

// NewSLAService creates the calculator from configured windows.
func NewSLAService(cfg config.SLAConfig, logger *zap.Logger) *SLAService {
	if logger == nil {
		logger = zap.NewNop()
	}
	windows := make(map[domain.TicketPriority]domain.SLAWindow, len(cfg.Windows))
	for priority, hours := range cfg.Windows {
		windows[domain.TicketPriority(priority)] = domain.SLAWindow{ResponseHours: hours.Response, ResolutionHours: hours.Resolution}
	}
	def := domain.SLAWindow{ResponseHours: cfg.Default.Response, ResolutionHours: cfg.Default.Resolution}
	if def.ResponseHours <= 0 || def.ResolutionHours <= 0 {
		def = domain.SLAWindow{ResponseHours: 24, ResolutionHours: 72}
	}
	return &SLAService{windows: windows, defaultWindow: def, logger: logger}
}

// Window returns the allowance for priority, falling back to the default window.
func (s *SLAService) Window(priority domain.TicketPriority) domain.SLAWindow {
	if window, ok := s.windows[priority]; ok {
		return window
	}
	return s.defaultWindow
}

// DueDates returns the response and resolution deadlines for a ticket
// created at createdAt. A zero createdAt is unusable and now stands in.
func (s *SLAService) DueDates(priority domain.TicketPriority, createdAt, now time.Time) (time.Time, time.Time) {
	if createdAt.IsZero() {
		s.logger.Debug("ticket has no usable created_at; measuring SLA from now",
			zap.String("priority", string(priority)))
		createdAt = now
	}
	window := s.Window(priority)
	responseDue := createdAt.Add(time.Duration(window.ResponseHours) * time.Hour)
	resolutionDue := createdAt.Add(time.Duration(window.ResolutionHours) * time.Hour)
	return responseDue, resolutionDue
}

// Status computes the SLA snapshot of ticket at now. Terminal tickets are
// always compliant and can never breach.
func (s *SLAService) Status(ticket domain.Ticket, now time.Time) domain.SLASnapshot {
	responseDue, resolutionDue := s.DueDates(ticket.Priority, ticket.CreatedAt, now)
	terminal := ticket.IsTerminal()

	snapshot := domain.SLASnapshot{
		ResponseDue:   responseDue,
		ResolutionDue: resolutionDue,
		ResponseOK:    terminal || now.Before(responseDue),
		ResolutionOK:  terminal || now.Before(resolutionDue),
		TimeToBreach:  domain.NoBreach,
	}
	if !terminal {
		snapshot.TimeToBreach = resolutionDue.Sub(now)
	}
	snapshot.Breached = !snapshot.ResolutionOK
	return snapshot
}

// Summary aggregates compliance over tickets at now.
func (s *SLAService) Summary(tickets []domain.Ticket, now time.Time) domain.SLASummary {
	summary := domain.SLASummary{Total: len(tickets)}
	for _, ticket := range tickets {
		snapshot := s.Status(ticket, now)
		switch {
		case snapshot.Breached:
			summary.Breached++
		case snapshot.TimeToBreach < summaryAtRiskWindow:
			summary.AtRisk++
		default:
			summary.Compliant++
		}
	}
	summary.ComplianceRate = 100
	if summary.Total > 0 {
		rate := float64(summary.Compliant) / float64(summary.Total) * 100
		summary.ComplianceRate = math.Round(rate*10) / 10
	}
	return summary
}
