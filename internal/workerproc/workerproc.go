// Package workerproc decodes queued notifications and delivers them.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrNoRecipients indicates a message that can never be delivered.
type ErrNoRecipients struct {
	Meta      MessageMeta
	ID        string
	RequestID string
}

func (e ErrNoRecipients) Error() string { return "notification has no recipients" }

// ErrDeliver indicates delivery failed after successful parsing. It is retryable.
type ErrDeliver struct {
	ID        string
	RequestID string
	Err       error
}

func (e ErrDeliver) Error() string {
	if e.Err == nil {
		return "deliver notification"
	}
	return "deliver notification: " + e.Err.Error()
}

func (e ErrDeliver) Unwrap() error { return e.Err }

// Unrecoverable reports whether err means the message should be dropped.
func Unrecoverable(err error) bool {
	switch err.(type) {
	case ErrEmptyBody, ErrDecode, ErrNoRecipients:
		return true
	default:
		return false
	}
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if len(notify.FromQueue(msg).Recipients()) == 0 {
		return msg, meta, ErrNoRecipients{Meta: meta, ID: msg.ID, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Deliver sends a parsed message through sender.
func Deliver(ctx context.Context, sender notify.Sender, msg queue.Message) error {
	if sender == nil {
		return errors.New("notification sender not configured")
	}
	ctx = notify.WithRequestID(ctx, msg.RequestID)
	if err := sender.Send(ctx, notify.FromQueue(msg)); err != nil {
		return ErrDeliver{ID: msg.ID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// HandleMessage parses, validates, and delivers a message payload.
func HandleMessage(ctx context.Context, sender notify.Sender, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return Deliver(ctx, sender, msg)
}
