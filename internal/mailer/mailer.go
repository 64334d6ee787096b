package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/northtrade/marketplace/ingestion-service/internal/config"
)

// Mailer sends operational alert email, currently only for search sync
// failures that exhausted their retries.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	to     []string
}

// New returns nil when SMTP is not configured; callers treat a nil Mailer
// as "alerting disabled".
func New(cfg *config.SMTPConfig) *Mailer {
	if cfg == nil || cfg.Host == "" || len(cfg.AlertsTo) == 0 {
		return nil
	}
	return &Mailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.AlertsTo,
	}
}

func (m *Mailer) SendAlert(subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", m.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send alert mail: %w", err)
	}
	return nil
}
