package messaging

import (
	"context"
	"fmt"
	"time"

	mail "gopkg.in/mail.v2"
)

// SMTPConfig holds the relay settings
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

// SMTPSender delivers email through an SMTP relay using STARTTLS
type SMTPSender struct {
	dialer   *mail.Dialer
	from     string
	fromName string
}

var _ Sender = (*SMTPSender)(nil)

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if cfg.Port == 25 {
		d.StartTLSPolicy = mail.OpportunisticStartTLS
	}
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}

	return &SMTPSender{
		dialer:   d,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// Send dials the relay and sends email. The dial is abandoned when ctx ends
// first, although the relay may still accept the message.
func (s *SMTPSender) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("smtp: no recipients")
	}

	m := s.message(email)

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: send to %s: %w", email.To, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPSender) message(email Email) *mail.Message {
	m := mail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", email.To...)
	m.SetHeader("Subject", email.Subject)
	m.SetBody("text/plain", email.Text)
	if email.HTML != "" {
		m.AddAlternative("text/html", email.HTML)
	}
	return m
}
