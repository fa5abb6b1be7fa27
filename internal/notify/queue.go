package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/queue"
)

// QueueSender hands notifications to the notification worker through a queue.
type QueueSender struct {
	client queue.Client
	now    func() time.Time
}

func NewQueueSender(client queue.Client) *QueueSender {
	return &QueueSender{client: client, now: time.Now}
}

func (s *QueueSender) Send(ctx context.Context, msg Message) error {
	to := msg.Recipients()
	if len(to) == 0 {
		return ErrNoRecipients
	}
	return s.client.Send(ctx, queue.Message{
		ID:         uuid.NewString(),
		To:         to,
		Subject:    msg.Subject,
		Body:       msg.Body,
		RequestID:  RequestIDFromContext(ctx),
		EnqueuedAt: s.now().UTC().Format(time.RFC3339),
		Version:    queue.CurrentVersion,
	})
}

// FromQueue converts a queued payload back into a Message.
func FromQueue(msg queue.Message) Message {
	return Message{To: msg.To, Subject: msg.Subject, Body: msg.Body}
}

var _ Sender = (*QueueSender)(nil)
