package intake

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Message is one inbound support request before it becomes a ticket.
type Message struct {
	Sender   string `json:"sender"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	SourceID string `json:"source_id,omitempty"`
}

// Source supplies inbound messages. Fetch returns everything currently
// available; callers dedupe.
type Source interface {
	Fetch(ctx context.Context) ([]Message, error)
	Name() string
}

// Key identifies a message for dedupe: the SHA-256 of SourceID when the
// transport provides one, otherwise of sender|subject|body.
func (m Message) Key() string {
	raw := m.SourceID
	if raw == "" {
		raw = strings.Join([]string{m.Sender, m.Subject, m.Body}, "|")
	}
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
