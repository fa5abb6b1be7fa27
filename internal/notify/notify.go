// Package notify delivers email notifications about applications and companies.
package notify

import (
	"context"
	"errors"
	"strings"

	"jobportal-backend/internal/shared/telemetry"
)

// ErrNoRecipients is returned when a message has no usable address.
var ErrNoRecipients = errors.New("notification has no recipients")

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Recipients returns the trimmed, de-duplicated non-empty addresses of m.
func (m Message) Recipients() []string {
	seen := make(map[string]struct{}, len(m.To))
	out := make([]string, 0, len(m.To))
	for _, addr := range m.To {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes notifications to the structured log instead of sending them.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	to := msg.Recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}
	telemetry.Info("notify.log", map[string]any{
		"to":      strings.Join(to, ","),
		"subject": msg.Subject,
		"bytes":   len(msg.Body),
	})
	return nil
}
