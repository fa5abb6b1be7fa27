package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender sends notifications through an SMTP relay.
type SMTPSender struct {
	dialer dialer
	from   string
}

// NewSMTPSender builds a sender for host:port with optional credentials.
func NewSMTPSender(host string, port int, user, password, from string) (*SMTPSender, error) {
	if host == "" {
		return nil, fmt.Errorf("SMTP_HOST is required")
	}
	if from == "" {
		return nil, fmt.Errorf("NOTIFY_FROM is required")
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   from,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	to := msg.Recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

var _ Sender = (*SMTPSender)(nil)
