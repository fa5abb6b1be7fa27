package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	channel string
	payload []byte
	err     error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payload, _ = message.([]byte)
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestRedisPublisherEncodesEvent(t *testing.T) {
	fake := &fakeRedis{}
	p := &RedisPublisher{client: fake, channel: ApplicationsChannel}
	at := time.Date(2026, time.May, 4, 9, 30, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{
		Type:          TypeStatusChanged,
		ApplicationID: "app-1",
		JobID:         "job-1",
		ApplicantID:   "seeker-1",
		From:          "pending",
		To:            "shortlisted",
		At:            at,
	})
	require.NoError(t, err)
	assert.Equal(t, "jobportal.applications", fake.channel)

	var got map[string]any
	require.NoError(t, json.Unmarshal(fake.payload, &got))
	assert.Equal(t, "APPLICATION_STATUS_CHANGED", got["type"])
	assert.Equal(t, "shortlisted", got["to"])
	assert.NotContains(t, got, "actorId")
}

func TestRedisPublisherPropagatesError(t *testing.T) {
	p := &RedisPublisher{client: &fakeRedis{err: errors.New("connection reset")}, channel: ApplicationsChannel}
	err := p.Publish(context.Background(), Event{Type: TypeApplicationSubmitted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), TypeApplicationSubmitted)
}

func TestNewRedisPublisherNilClient(t *testing.T) {
	assert.IsType(t, Nop{}, NewRedisPublisher(nil))
	assert.NoError(t, Nop{}.Publish(context.Background(), Event{}))
}
