package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/spec-kit/servicedesk/internal/events"
)

var templates = template.Must(template.New("mail").Parse(`
{{define "ticket_created"}}<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Your Service Desk Ticket Has Been Created</h2>
    <table style="border-collapse: collapse;">
        <tr><td><strong>Ticket ID:</strong></td><td>#{{.TicketID}}</td></tr>
        <tr><td><strong>Issue:</strong></td><td>{{.Payload.Issue}}</td></tr>
        <tr><td><strong>Category:</strong></td><td>{{.Payload.Category}}</td></tr>
        <tr><td><strong>Priority:</strong></td><td>{{.Payload.Priority}}</td></tr>
        <tr><td><strong>Status:</strong></td><td>{{.Payload.Status}}</td></tr>
    </table>
    <p>We will respond within the SLA timeframe for {{.Payload.Priority}} priority tickets.</p>
    <p>Thank you,<br>IT Service Desk</p>
</body>
</html>{{end}}
{{define "ticket_resolved"}}<html>
<body style="font-family: Arial, sans-serif;">
    <h2>Your Ticket Has Been Resolved</h2>
    <p>Ticket <strong>#{{.TicketID}}</strong> regarding "<em>{{.Payload.Issue}}</em>" has been resolved.</p>
    <p>If you still need assistance, please reply to this email or submit a new request.</p>
    <p>Thank you,<br>IT Service Desk</p>
</body>
</html>{{end}}
{{define "ticket_escalated"}}<html>
<body style="font-family: Arial, sans-serif;">
    <h2 style="color: #d32f2f;">High Priority Ticket Escalated</h2>
    <table style="border-collapse: collapse;">
        <tr><td><strong>Ticket ID:</strong></td><td>#{{.TicketID}}</td></tr>
        <tr><td><strong>From:</strong></td><td>{{.Payload.Sender}}</td></tr>
        <tr><td><strong>Issue:</strong></td><td>{{.Payload.Issue}}</td></tr>
        <tr><td><strong>Category:</strong></td><td>{{.Payload.Category}}</td></tr>
    </table>
    <p><strong>Action Required:</strong> Please respond within SLA.</p>
</body>
</html>{{end}}
{{define "sla_near_breach"}}<html>
<body style="font-family: Arial, sans-serif;">
    <h2 style="color: #ff9800;">SLA Breach Warning</h2>
    <p>Ticket <strong>#{{.TicketID}}</strong> is approaching SLA breach.</p>
    <p>Please take immediate action.</p>
</body>
</html>{{end}}
`))

// Render returns the subject line and HTML body for an event.
func Render(event events.Event) (string, string, error) {
	var subject string
	switch event.Type {
	case events.EventTicketCreated:
		subject = fmt.Sprintf("Ticket #%d Created: %s", event.TicketID, event.Payload.Issue)
	case events.EventTicketResolved:
		subject = fmt.Sprintf("Ticket #%d Resolved", event.TicketID)
	case events.EventTicketEscalated:
		subject = fmt.Sprintf("[ESCALATED] Ticket #%d: %s", event.TicketID, event.Payload.Issue)
	case events.EventSLANearBreach:
		subject = fmt.Sprintf("[SLA WARNING] Ticket #%d approaching breach", event.TicketID)
	default:
		return "", "", fmt.Errorf("no mail template for %s", event.Type)
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, string(event.Type), event); err != nil {
		return "", "", err
	}
	return subject, body.String(), nil
}
