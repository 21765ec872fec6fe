package dto

// IntakeMessageRequest submits one inbound message.
type IntakeMessageRequest struct {
	Sender   string `json:"sender"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	SourceID string `json:"source_id"`
}

// IntakeProcessResponse summarises an intake pass.
type IntakeProcessResponse struct {
	Source    string           `json:"source"`
	Fetched   int              `json:"fetched"`
	Created   int              `json:"created"`
	Duplicate int              `json:"duplicate"`
	Failed    int              `json:"failed"`
	Tickets   []TicketResponse `json:"tickets"`
}
