package domain

import (
	"math"
	"time"
)

// NoBreach is the time-to-breach reported for terminal tickets. It compares
// greater than any realistic finite duration.
const NoBreach = time.Duration(math.MaxInt64)

// SLAWindow holds per-priority response and resolution allowances in whole hours.
type SLAWindow struct {
	ResponseHours   int
	ResolutionHours int
}

// SLASnapshot is the derived, non-persisted SLA view of a ticket at an instant.
type SLASnapshot struct {
	ResponseDue   time.Time
	ResolutionDue time.Time
	ResponseOK    bool
	ResolutionOK  bool
	TimeToBreach  time.Duration
	Breached      bool
}

// SLASummary aggregates compliance over a set of tickets.
type SLASummary struct {
	Total          int
	Compliant      int
	AtRisk         int
	Breached       int
	ComplianceRate float64
}

// TicketStats are dashboard counters over the whole store.
type TicketStats struct {
	Total      int
	Open       int
	Resolved   int
	ByPriority map[string]int
	ByCategory map[string]int
}
