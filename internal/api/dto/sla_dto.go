package dto

// SLASummaryResponse compliance over all tickets.
type SLASummaryResponse struct {
	Total          int     `json:"total"`
	Compliant      int     `json:"compliant"`
	AtRisk         int     `json:"at_risk"`
	Breached       int     `json:"breached"`
	ComplianceRate float64 `json:"compliance_rate"`
}

// SweepResponse counts from an on-demand SLA check.
type SweepResponse struct {
	AtRisk   int `json:"at_risk"`
	Breached int `json:"breached"`
}

// TeamResponse one routing table entry.
type TeamResponse struct {
	Category string `json:"category"`
	Address  string `json:"address"`
}
