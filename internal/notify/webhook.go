package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultWebhookTimeout = 5 * time.Second

// Webhook posts JSON event payloads to a configured URL.
type Webhook struct {
	url     string
	timeout time.Duration
}

// NewWebhook returns nil when url is empty.
func NewWebhook(url string) *Webhook {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	return &Webhook{url: url, timeout: defaultWebhookTimeout}
}

// Post delivers payload. Non-2xx responses are errors.
func (w *Webhook) Post(ctx context.Context, payload any) error {
	if w == nil {
		return ErrNotConfigured
	}
	timeout := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}

	agent := fiber.Post(w.url)
	agent.JSON(payload)
	agent.Timeout(timeout)
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("webhook url: %w", err)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("webhook responded %d: %s", code, truncate(string(body), 200))
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
