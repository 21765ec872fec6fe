package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/servicedesk/internal/config"
)

// ErrNotConfigured is returned by senders that lack credentials or endpoints.
var ErrNotConfigured = fmt.Errorf("notification channel not configured")

const defaultMailTimeout = 15 * time.Second

// Mailer delivers HTML mail over SMTP with STARTTLS when offered. Every
// exchange is bounded by the caller's context and a per-message timeout.
type Mailer struct {
	addr    string
	host    string
	from    string
	auth    smtp.Auth
	timeout time.Duration
	dial    func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewMailer builds a Mailer. It returns nil when SMTP is not configured so
// callers can skip email delivery.
func NewMailer(cfg config.NotificationConfig) *Mailer {
	if !cfg.SMTPConfigured() {
		return nil
	}
	port := cfg.SMTPPort
	if port <= 0 {
		port = 587
	}
	return &Mailer{
		addr:    net.JoinHostPort(cfg.SMTPHost, strconv.Itoa(port)),
		host:    cfg.SMTPHost,
		from:    cfg.EmailFrom,
		auth:    smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
		timeout: defaultMailTimeout,
		dial:    (&net.Dialer{}).DialContext,
	}
}

// Send mails an HTML message to a single recipient. It returns once the
// context is done even if the server stops responding mid-exchange.
func (m *Mailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m == nil {
		return ErrNotConfigured
	}
	if strings.TrimSpace(to) == "" {
		return fmt.Errorf("mail recipient required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := m.dial(ctx, "tcp", m.addr)
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(m.timeout)); err != nil {
		_ = conn.Close()
		return err
	}
	// A done context expires the conn so pending reads and writes fail now.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	err = m.exchange(conn, to, buildMessage(m.from, to, subject, htmlBody))
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("smtp: %w", errors.Join(ctx.Err(), err))
	}
	return err
}

func (m *Mailer) exchange(conn net.Conn, to string, msg []byte) error {
	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp greeting: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(m.auth); err != nil {
				return fmt.Errorf("smtp auth: %w", err)
			}
		}
	}
	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	return client.Quit()
}

func buildMessage(from, to, subject, htmlBody string) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
