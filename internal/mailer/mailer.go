// internal/mailer/mailer.go
//
// FormRelayer – outbound email delivery.
//
// Context
//   The pipeline hands fully composed emails to a Sender.  Two senders
//   exist: SMTPSender speaks plain SMTP with STARTTLS when the server
//   advertises it, and LogSender logs the payload for development setups
//   without a relay.  Delivery is one attempt, no queue, no retry; the
//   composer records metrics and the processor logs failures.
//
//------------------------------------------------------------------------------

package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is one outbound message.  HTML is the primary body; Text is the
// plain-text alternative.
type Email struct {
	To       []string
	From     string
	FromName string
	ReplyTo  string
	Subject  string
	Text     string
	HTML     string
}

// Sender delivers one email.
type Sender interface {
	Send(ctx context.Context, msg Email) error
}

// -----------------------------------------------------------------------------
// SMTP sender
// -----------------------------------------------------------------------------

// SMTPSender delivers via a single relay host.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
}

// NewSMTP returns an SMTP sender.  Empty username disables authentication.
func NewSMTP(host string, port int, username, password string) *SMTPSender {
	if port == 0 {
		port = 587
	}
	return &SMTPSender{host: host, port: port, username: username, password: password}
}

// Send performs one SMTP transaction.  The context deadline is honored for
// the dial; the SMTP conversation itself uses the connection's default
// timeouts.
func (s *SMTPSender) Send(ctx context.Context, msg Email) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if s.username != "" {
		auth := smtp.PlainAuth("", s.username, s.password, s.host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(render(msg)); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp finish: %w", err)
	}
	return c.Quit()
}

// render builds the RFC 5322 message bytes: multipart/alternative when both
// bodies are present, a single part otherwise.
func render(msg Email) []byte {
	var b strings.Builder

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}
	header(&b, "From", from)
	header(&b, "To", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		header(&b, "Reply-To", msg.ReplyTo)
	}
	header(&b, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header(&b, "MIME-Version", "1.0")

	switch {
	case msg.HTML != "" && msg.Text != "":
		const boundary = "fr-alt-5c2e91"
		header(&b, "Content-Type", `multipart/alternative; boundary="`+boundary+`"`)
		b.WriteString("\r\n")
		part(&b, boundary, "text/plain; charset=utf-8", msg.Text)
		part(&b, boundary, "text/html; charset=utf-8", msg.HTML)
		b.WriteString("--" + boundary + "--\r\n")
	case msg.HTML != "":
		header(&b, "Content-Type", "text/html; charset=utf-8")
		b.WriteString("\r\n")
		b.WriteString(msg.HTML)
		b.WriteString("\r\n")
	default:
		header(&b, "Content-Type", "text/plain; charset=utf-8")
		b.WriteString("\r\n")
		b.WriteString(msg.Text)
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

func header(b *strings.Builder, k, v string) {
	b.WriteString(k)
	b.WriteString(": ")
	b.WriteString(v)
	b.WriteString("\r\n")
}

func part(b *strings.Builder, boundary, contentType, body string) {
	b.WriteString("--" + boundary + "\r\n")
	b.WriteString("Content-Type: " + contentType + "\r\n\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
}

// -----------------------------------------------------------------------------
// Log sender
// -----------------------------------------------------------------------------

// LogSender logs instead of delivering.  Used when no SMTP host is
// configured so development setups can observe composed emails.
type LogSender struct{}

// Send logs the payload and reports success.
func (LogSender) Send(_ context.Context, msg Email) error {
	zap.S().Infow("email (log sender)",
		"to", msg.To, "subject", msg.Subject,
		"text_len", len(msg.Text), "html_len", len(msg.HTML))
	return nil
}
