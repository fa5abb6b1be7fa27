package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "oauth:state:"

// StateStore holds single-use OAuth state values between start and callback.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// MemoryStates keeps state in process. Callbacks must reach the same instance.
type MemoryStates struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func NewMemoryStates() *MemoryStates {
	return &MemoryStates{items: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStates) Put(_ context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.items {
		if now.After(exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStates) Consume(_ context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	return ok && !s.now().After(exp), nil
}

type redisStateClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// RedisStates shares state across API instances.
type RedisStates struct {
	client redisStateClient
}

func NewRedisStates(client redisStateClient) *RedisStates {
	return &RedisStates{client: client}
}

func (s *RedisStates) Put(ctx context.Context, state string, ttl time.Duration) error {
	ok, err := s.client.SetNX(ctx, stateKeyPrefix+state, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("oauth state collision")
	}
	return nil
}

func (s *RedisStates) Consume(ctx context.Context, state string) (bool, error) {
	err := s.client.GetDel(ctx, stateKeyPrefix+state).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

var (
	_ StateStore = (*MemoryStates)(nil)
	_ StateStore = (*RedisStates)(nil)
)
