/*
Package notify sends signed-request reminder emails to managers.

PURPOSE:
  Two pieces: an SMTP mailer (this file) and the sweep scheduler that
  decides when and for which records a reminder goes out (sweep.go).

MAILER CONTRACT:
  The rest of the system only knows "can currently send" and
  "send this subject/body". When SMTP settings are incomplete the
  mailer is disabled: it reports Enabled() == false and the scheduler
  skips sending entirely (with a single warning at construction, not
  one per sweep).

SEE ALSO:
  - sweep.go: reminder candidate selection and scheduling
  - config package: SMTP settings
*/
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/eigida/vacations/config"
)

// Mailer is the email transport the sweep depends on.
type Mailer interface {
	// Enabled reports whether the transport is configured to send.
	Enabled() bool

	// Send delivers a plain-text message to the configured recipient.
	Send(ctx context.Context, subject, body string) error
}

// SMTPMailer sends through a configured SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
	to     string
}

// NewSMTPMailer builds a mailer from SMTP settings. Returns a disabled
// mailer (never an error) when the settings are incomplete or the
// notifications are switched off, so the caller's startup path stays
// uniform.
func NewSMTPMailer(cfg config.Config, log *zap.Logger) *SMTPMailer {
	if !cfg.EmailEnabled || !cfg.SMTP.Complete() {
		log.Warn("email reminders disabled: incomplete SMTP configuration",
			zap.Bool("notifications_enabled", cfg.EmailEnabled),
			zap.String("smtp_host", cfg.SMTP.Host),
		)
		return &SMTPMailer{}
	}

	opts := []mail.Option{
		mail.WithPort(cfg.SMTP.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.SMTP.User),
		mail.WithPassword(cfg.SMTP.Pass),
	}
	if cfg.SMTP.Secure {
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		log.Warn("email reminders disabled: SMTP client setup failed", zap.Error(err))
		return &SMTPMailer{}
	}

	return &SMTPMailer{client: client, from: cfg.SMTP.From, to: cfg.SMTP.To}
}

// Enabled reports whether the mailer was fully configured.
func (m *SMTPMailer) Enabled() bool {
	return m.client != nil
}

// Send delivers one plain-text message.
func (m *SMTPMailer) Send(ctx context.Context, subject, body string) error {
	if m.client == nil {
		return fmt.Errorf("mailer is not configured")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
