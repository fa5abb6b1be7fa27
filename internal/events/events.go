// Package events publishes application lifecycle events for other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ApplicationsChannel is the Redis channel application events are published on.
const ApplicationsChannel = "jobportal.applications"

const (
	TypeApplicationSubmitted = "APPLICATION_SUBMITTED"
	TypeStatusChanged        = "APPLICATION_STATUS_CHANGED"
)

// Event describes a change to an application.
type Event struct {
	Type          string    `json:"type"`
	ApplicationID string    `json:"applicationId"`
	JobID         string    `json:"jobId"`
	ApplicantID   string    `json:"applicantId"`
	ActorID       string    `json:"actorId,omitempty"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to"`
	At            time.Time `json:"at"`
}

// Publisher emits events. Implementations are best-effort.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher publishes events as JSON on a Redis channel.
type RedisPublisher struct {
	client  redisPublisher
	channel string
}

// NewRedisPublisher returns a publisher on ApplicationsChannel, or Nop when client is nil.
func NewRedisPublisher(client *redis.Client) Publisher {
	if client == nil {
		return Nop{}
	}
	return &RedisPublisher{client: client, channel: ApplicationsChannel}
}

func (p *RedisPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	return nil
}
