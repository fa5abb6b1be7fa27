package health

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type redisPinger struct{ client *redis.Client }

// RedisPinger adapts client for Service. A nil client yields a nil Pinger.
func RedisPinger(client *redis.Client) Pinger {
	if client == nil {
		return nil
	}
	return redisPinger{client: client}
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
