package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/servicedesk/internal/api/http/handlers"
	"github.com/spec-kit/servicedesk/internal/auth"
	"github.com/spec-kit/servicedesk/internal/clock"
	"github.com/spec-kit/servicedesk/internal/config"
	"github.com/spec-kit/servicedesk/internal/intake"
	"github.com/spec-kit/servicedesk/internal/observability"
	"github.com/spec-kit/servicedesk/internal/repository"
	"github.com/spec-kit/servicedesk/internal/service"
	"github.com/spec-kit/servicedesk/internal/worker"
)

var epoch = time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)

type testServer struct {
	app   *fiber.App
	clock *clock.FakeClock
	auth  *service.AuthService
}

func newTestServer(t *testing.T, authEnabled bool) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	clk := clock.Fake(epoch)
	repo := repository.NewMemoryTicketRepository(clk)

	routing := config.RoutingConfig{Teams: config.DefaultTeams()}
	assignment := service.NewAssignmentService(repo, routing)
	sla := service.NewSLAService(service.DefaultSLAConfig(), logger)
	notifications := service.NewNotificationService(service.NotificationDependencies{Logger: logger, Clock: clk, Metrics: metrics})
	notifications.RegisterHandlers()

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repo,
		HistoryRepo: repository.NewMemoryTicketHistoryRepository(clk),
		Assignment:  assignment,
		SLA:         sla,
		Notifier:    notifications,
		Logger:      logger,
		Metrics:     metrics,
		Clock:       clk,
	})

	emails := filepath.Join(t.TempDir(), "emails.txt")
	require.NoError(t, os.WriteFile(emails, []byte("ann@corp.test|VPN|cannot connect\nbob@corp.test|Outlook|will not send\n"), 0o600))
	intakeService := service.NewIntakeService(service.IntakeDependencies{
		Tickets: tickets,
		Source:  intake.NewFileSource(emails),
		Deduper: intake.NewMemoryDeduper(),
		Logger:  logger,
		Metrics: metrics,
	})

	sweeper := worker.NewSLAWorker(worker.SLAWorkerDependencies{
		Tickets:  tickets,
		Router:   assignment,
		SLA:      sla,
		Notifier: notifications,
		Logger:   logger,
		Metrics:  metrics,
		Clock:    clk,
	})

	authService, err := service.NewAuthService(config.AuthConfig{
		Enabled:          authEnabled,
		JWTSecret:        "test",
		BcryptCost:       bcrypt.MinCost,
		OperatorEmail:    "ops@corp.test",
		OperatorPassword: "pw",
	}, logger)
	require.NoError(t, err)

	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("servicedesk", "test", nil, nil, map[string]bool{"smtp": false}),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(tickets),
		SLA:            handlers.NewSLAHandler(tickets, sweeper),
		Teams:          handlers.NewTeamsHandler(assignment),
		Intake:         handlers.NewIntakeHandler(intakeService),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), authEnabled),
		Metrics:        metrics,
	})
	return &testServer{app: app, clock: clk, auth: authService}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

type ticketJSON struct {
	ID         int64  `json:"id"`
	Sender     string `json:"sender"`
	Issue      string `json:"issue"`
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
	SLA        *struct {
		Breached            bool   `json:"breached"`
		TimeToBreachSeconds *int64 `json:"time_to_breach_seconds"`
	} `json:"sla"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, false)

	status, env := s.do(t, nethttp.MethodPost, "/api/tickets", map[string]string{"sender": "ann@corp.test", "issue": "Production server down"})
	require.Equal(t, nethttp.StatusCreated, status)
	created := decode[ticketJSON](t, env.Data)
	assert.Equal(t, "Infrastructure", created.Category)
	assert.Equal(t, "High", created.Priority)
	assert.Equal(t, "Escalated", created.Status)
	assert.Equal(t, "infra-team@example.com", created.AssignedTo)

	s.clock.Advance(5 * time.Hour)
	status, env = s.do(t, nethttp.MethodGet, "/api/tickets/1", nil)
	require.Equal(t, nethttp.StatusOK, status)
	got := decode[ticketJSON](t, env.Data)
	require.NotNil(t, got.SLA)
	assert.True(t, got.SLA.Breached)
	require.NotNil(t, got.SLA.TimeToBreachSeconds)
	assert.Equal(t, int64(-3600), *got.SLA.TimeToBreachSeconds)

	status, env = s.do(t, nethttp.MethodPost, "/api/tickets/1/resolve", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Closed", decode[ticketJSON](t, env.Data).Status)

	status, env = s.do(t, nethttp.MethodGet, "/api/tickets/1", nil)
	require.Equal(t, nethttp.StatusOK, status)
	closed := decode[ticketJSON](t, env.Data)
	assert.False(t, closed.SLA.Breached)
	assert.Nil(t, closed.SLA.TimeToBreachSeconds)

	status, env = s.do(t, nethttp.MethodPost, "/api/tickets/1/reopen", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "Open", decode[ticketJSON](t, env.Data).Status)

	status, env = s.do(t, nethttp.MethodPost, "/api/tickets/1/assign", map[string]string{"assigned_to": "noc@corp.test"})
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "noc@corp.test", decode[ticketJSON](t, env.Data).AssignedTo)
}

func TestErrorEnvelope(t *testing.T) {
	s := newTestServer(t, false)

	status, env := s.do(t, nethttp.MethodPost, "/api/tickets/42/escalate", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
	assert.Equal(t, float64(42), env.Error.Details["ticket_id"])

	status, env = s.do(t, nethttp.MethodPost, "/api/tickets/1/assign", map[string]string{"assigned_to": ""})
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = s.do(t, nethttp.MethodGet, "/api/tickets/abc", nil)
	assert.Equal(t, nethttp.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	status, env = s.do(t, nethttp.MethodGet, "/api/nope", nil)
	assert.Equal(t, nethttp.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestQueriesOverHTTP(t *testing.T) {
	s := newTestServer(t, false)
	for _, issue := range []string{"reset my password", "vpn is flaky", "outage in lab"} {
		status, _ := s.do(t, nethttp.MethodPost, "/api/tickets", map[string]string{"sender": "x@corp.test", "issue": issue})
		require.Equal(t, nethttp.StatusCreated, status)
	}

	status, env := s.do(t, nethttp.MethodGet, "/api/tickets?status=open,escalated", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]ticketJSON](t, env.Data), 2)

	status, env = s.do(t, nethttp.MethodGet, "/api/tickets/search?q=VPN", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]ticketJSON](t, env.Data), 1)

	status, env = s.do(t, nethttp.MethodGet, "/api/stats", nil)
	require.Equal(t, nethttp.StatusOK, status)
	stats := decode[map[string]any](t, env.Data)
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(1), stats["resolved"])

	status, env = s.do(t, nethttp.MethodGet, "/api/teams/workload", nil)
	require.Equal(t, nethttp.StatusOK, status)
	workload := decode[map[string]int](t, env.Data)
	assert.Equal(t, 1, workload["network-team@example.com"])
	assert.Equal(t, 1, workload["infra-team@example.com"])
	assert.Equal(t, 0, workload["identity-team@example.com"])
	assert.Equal(t, 0, workload["messaging-team@example.com"])

	status, env = s.do(t, nethttp.MethodGet, "/api/teams", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Len(t, decode[[]map[string]string](t, env.Data), 6)

	s.clock.Advance(3*time.Hour + 45*time.Minute)
	status, env = s.do(t, nethttp.MethodPost, "/api/sla/check", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, map[string]int{"at_risk": 1, "breached": 0}, decode[map[string]int](t, env.Data))

	status, env = s.do(t, nethttp.MethodGet, "/api/sla", nil)
	require.Equal(t, nethttp.StatusOK, status)
	summary := decode[map[string]float64](t, env.Data)
	assert.Equal(t, float64(3), summary["total"])
	assert.Equal(t, float64(1), summary["at_risk"])
}

func TestIntakeOverHTTP(t *testing.T) {
	s := newTestServer(t, false)

	status, env := s.do(t, nethttp.MethodPost, "/api/intake/process", nil)
	require.Equal(t, nethttp.StatusOK, status)
	result := decode[map[string]any](t, env.Data)
	assert.Equal(t, float64(2), result["created"])
	assert.Equal(t, "file", result["source"])

	status, env = s.do(t, nethttp.MethodPost, "/api/intake/process", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(2), decode[map[string]any](t, env.Data)["duplicate"])

	msg := map[string]string{"sender": "cid@corp.test", "subject": "Install Zoom", "body": "please"}
	status, env = s.do(t, nethttp.MethodPost, "/api/intake", msg)
	require.Equal(t, nethttp.StatusCreated, status)
	ticket := decode[ticketJSON](t, env.Data)
	assert.Equal(t, "Install Zoom", ticket.Issue)
	assert.Equal(t, "Software", ticket.Category)

	status, env = s.do(t, nethttp.MethodPost, "/api/intake", msg)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, "null", string(env.Data))

	status, _ = s.do(t, nethttp.MethodPost, "/api/intake/reset", nil)
	require.Equal(t, nethttp.StatusOK, status)
	status, env = s.do(t, nethttp.MethodPost, "/api/intake/process", nil)
	require.Equal(t, nethttp.StatusOK, status)
	assert.Equal(t, float64(2), decode[map[string]any](t, env.Data)["created"])
}

func TestAuthEnforcedOnMutations(t *testing.T) {
	s := newTestServer(t, true)
	payload := map[string]string{"sender": "a@corp.test", "issue": "vpn"}

	status, env := s.do(t, nethttp.MethodPost, "/api/tickets", payload)
	assert.Equal(t, nethttp.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, _ = s.do(t, nethttp.MethodGet, "/api/tickets", nil)
	assert.Equal(t, nethttp.StatusOK, status, "reads stay public")

	status, _ = s.do(t, nethttp.MethodPost, "/auth/login", map[string]string{"email": "ops@corp.test", "password": "bad"})
	assert.Equal(t, nethttp.StatusUnauthorized, status)

	status, env = s.do(t, nethttp.MethodPost, "/auth/login", map[string]string{"email": "ops@corp.test", "password": "pw"})
	require.Equal(t, nethttp.StatusOK, status)
	token := decode[map[string]string](t, env.Data)["token"]
	require.NotEmpty(t, token)

	status, env = s.do(t, nethttp.MethodPost, "/api/tickets", payload, "Authorization", "Bearer "+token)
	require.Equal(t, nethttp.StatusCreated, status)
	id := decode[ticketJSON](t, env.Data).ID

	status, _ = s.do(t, nethttp.MethodPost, fmt.Sprintf("/api/tickets/%d/escalate", id), nil, "Authorization", "Bearer "+token)
	require.Equal(t, nethttp.StatusOK, status)

	status, env = s.do(t, nethttp.MethodGet, fmt.Sprintf("/api/tickets/%d/history", id), nil)
	require.Equal(t, nethttp.StatusOK, status)
	history := decode[[]map[string]any](t, env.Data)
	require.NotEmpty(t, history)
	assert.Equal(t, "system", history[0]["changed_by"])
	last := history[len(history)-1]
	assert.Equal(t, "ops@corp.test", last["changed_by"])
	assert.Equal(t, "PRIORITY_CHANGE", last["change_type"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, false)

	status, _ := s.do(t, nethttp.MethodGet, "/health/live", nil)
	assert.Equal(t, nethttp.StatusOK, status)
	status, _ = s.do(t, nethttp.MethodGet, "/health/ready", nil)
	assert.Equal(t, nethttp.StatusOK, status, "unconfigured dependencies do not block readiness")

	_, _ = s.do(t, nethttp.MethodPost, "/api/tickets", map[string]string{"sender": "a@corp.test", "issue": "vpn"})

	resp, err := s.app.Test(httptest.NewRequest(nethttp.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "servicedesk_tickets_created_total"))
	assert.True(t, strings.Contains(string(body), "servicedesk_http_requests_total"))
}
