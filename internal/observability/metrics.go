package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry             *prometheus.Registry
	requestCount         *prometheus.CounterVec
	requestDuration      *prometheus.HistogramVec
	errorCount           *prometheus.CounterVec
	ticketsCreated       *prometheus.CounterVec
	transitions          *prometheus.CounterVec
	notificationFailures *prometheus.CounterVec
	sweepRuns            prometheus.Counter
	sweepAtRisk          prometheus.Gauge
	sweepBreached        prometheus.Gauge
	intakeMessages       *prometheus.CounterVec
}

// NewMetrics registers collectors on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "servicedesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_http_errors_total",
			Help: "HTTP errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		ticketsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_tickets_created_total",
			Help: "Tickets created by category, priority and initial status.",
		}, []string{"category", "priority", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_ticket_transitions_total",
			Help: "Manual ticket operations by kind.",
		}, []string{"operation"}),
		notificationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_notification_failures_total",
			Help: "Notification dispatch failures by event type.",
		}, []string{"event"}),
		sweepRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "servicedesk_sla_sweeps_total",
			Help: "Completed SLA sweeps.",
		}),
		sweepAtRisk: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "servicedesk_sla_at_risk_tickets",
			Help: "Tickets near SLA breach at the last sweep.",
		}),
		sweepBreached: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "servicedesk_sla_breached_tickets",
			Help: "Tickets past their resolution deadline at the last sweep.",
		}),
		intakeMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_intake_messages_total",
			Help: "Inbound messages by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.ticketsCreated,
		m.transitions,
		m.notificationFailures,
		m.sweepRuns,
		m.sweepAtRisk,
		m.sweepBreached,
		m.intakeMessages,
	)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordTicketCreated counts a ticket leaving the creation pipeline.
func (m *Metrics) RecordTicketCreated(category, priority, status string) {
	if m == nil {
		return
	}
	m.ticketsCreated.WithLabelValues(category, priority, status).Inc()
}

// RecordTransition counts a manual lifecycle operation.
func (m *Metrics) RecordTransition(operation string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(operation).Inc()
}

// RecordNotificationFailure counts a failed notification dispatch.
func (m *Metrics) RecordNotificationFailure(event string) {
	if m == nil {
		return
	}
	m.notificationFailures.WithLabelValues(event).Inc()
}

// RecordSweep stores the outcome of one SLA sweep.
func (m *Metrics) RecordSweep(atRisk, breached int) {
	if m == nil {
		return
	}
	m.sweepRuns.Inc()
	m.sweepAtRisk.Set(float64(atRisk))
	m.sweepBreached.Set(float64(breached))
}

// RecordIntake counts an inbound message by outcome (created, duplicate, failed).
func (m *Metrics) RecordIntake(outcome string) {
	if m == nil {
		return
	}
	m.intakeMessages.WithLabelValues(outcome).Inc()
}
