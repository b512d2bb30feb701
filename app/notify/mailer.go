package notify

import (
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/jordan-wright/email"
)

// Mailer sends rate alerts over SMTP. Missing credentials is not an error
// condition: an unconfigured mailer logs and no-ops so the pipeline keeps
// running without delivery.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	to       string
}

func NewMailer(host string, port int, user, password, to string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		to:       to,
	}
}

// Configured reports whether the mailer has everything it needs to deliver.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.user != "" && m.password != "" && m.to != ""
}

// Send delivers an HTML alert to the configured recipient.
func (m *Mailer) Send(subject, htmlBody string) error {
	if !m.Configured() {
		slog.Warn("Mailer not configured, skipping notification", "subject", subject)
		return nil
	}

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("RateWatch <%s>", m.user)
	mail.To = []string{m.to}
	mail.Subject = subject
	mail.HTML = []byte(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	if err := mail.Send(addr, smtp.PlainAuth("", m.user, m.password, m.host)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	slog.Info("Notification sent", "to", m.to, "subject", subject)
	return nil
}
