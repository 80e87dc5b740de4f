/*
Package notify delivers payday reminders.

PURPOSE:
  The reminder scheduler computes the next preferred payday; this package
  turns that into an email. Delivery failure is reported to the caller and
  nothing else: schedules are recomputed from stored settings on demand, so
  a lost email never corrupts state.

IMPLEMENTATIONS:
  SMTPSender: net/smtp delivery, optional PLAIN auth.
  LogSender:  logs instead of sending; the default in development and the
              fallback when SMTP is not configured.
*/
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Sender delivers a single payday reminder.
type Sender interface {
	// SendPaydayReminder tells the recipient that `amount` becomes
	// available on the pre-formatted payday date.
	SendPaydayReminder(ctx context.Context, to string, amount decimal.Decimal, payday string) error
}

// =============================================================================
// SMTP SENDER
// =============================================================================

// SMTPSender sends reminders through a plain SMTP relay.
type SMTPSender struct {
	Addr string // host:port
	From string

	// Username/Password enable PLAIN auth when both are set.
	Username string
	Password string
	Host     string // auth host; defaults to the Addr host when empty
}

var _ Sender = (*SMTPSender)(nil)

func (s *SMTPSender) SendPaydayReminder(_ context.Context, to string, amount decimal.Decimal, payday string) error {
	if to == "" {
		return fmt.Errorf("no recipient address")
	}

	subject := fmt.Sprintf("Payday reminder: $%s on %s", amount.StringFixed(2), payday)
	body := fmt.Sprintf(
		"Your next allowance of $%s lands on %s.\r\n\r\nMove it to your spending account when it arrives.\r\n",
		amount.StringFixed(2), payday)

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		s.From, to, subject, body))

	var auth smtp.Auth
	if s.Username != "" && s.Password != "" {
		auth = smtp.PlainAuth("", s.Username, s.Password, s.Host)
	}

	if err := smtp.SendMail(s.Addr, auth, s.From, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send payday reminder to %s: %w", to, err)
	}
	return nil
}

// =============================================================================
// LOG SENDER
// =============================================================================

// LogSender records reminders instead of delivering them.
type LogSender struct {
	Log zerolog.Logger
}

var _ Sender = (*LogSender)(nil)

func (s *LogSender) SendPaydayReminder(_ context.Context, to string, amount decimal.Decimal, payday string) error {
	s.Log.Info().
		Str("to", to).
		Str("amount", amount.StringFixed(2)).
		Str("payday", payday).
		Msg("payday reminder (log only)")
	return nil
}
