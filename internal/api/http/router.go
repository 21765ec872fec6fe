package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	SLA            *handlers.SLAHandler
	Teams          *handlers.TeamsHandler
	Intake         *handlers.IntakeHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Reads are public; mutations pass the
// auth middleware and need the operator role when auth is enabled.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api")
	api.Get("/tickets", cfg.Tickets.ListTickets)
	api.Get("/tickets/search", cfg.Tickets.SearchTickets)
	api.Get("/tickets/:id", cfg.Tickets.GetTicket)
	api.Get("/tickets/:id/history", cfg.Tickets.TicketHistory)
	api.Get("/stats", cfg.Tickets.Stats)
	api.Get("/sla", cfg.SLA.Summary)
	api.Get("/teams", cfg.Teams.Teams)
	api.Get("/teams/workload", cfg.Teams.Workload)

	guard := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireRole(auth.RoleOperator), h}
	}
	api.Post("/tickets", guard(cfg.Tickets.CreateTicket)...)
	api.Post("/tickets/:id/resolve", guard(cfg.Tickets.ResolveTicket)...)
	api.Post("/tickets/:id/escalate", guard(cfg.Tickets.EscalateTicket)...)
	api.Post("/tickets/:id/reopen", guard(cfg.Tickets.ReopenTicket)...)
	api.Post("/tickets/:id/assign", guard(cfg.Tickets.AssignTicket)...)
	api.Post("/sla/check", guard(cfg.SLA.Check)...)
	api.Post("/intake", guard(cfg.Intake.Ingest)...)
	api.Post("/intake/process", guard(cfg.Intake.Process)...)
	api.Post("/intake/reset", guard(cfg.Intake.Reset)...)
}
