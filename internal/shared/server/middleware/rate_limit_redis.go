package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"jobportal-backend/internal/shared/server/respond"
	"jobportal-backend/internal/shared/telemetry"
)

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

// RedisLimiter is a fixed-window counter shared by every API instance.
type RedisLimiter struct {
	client  redis.Scripter
	script  *redis.Script
	timeout time.Duration
}

// NewRedisLimiter returns nil when client is nil; a nil limiter allows everything.
func NewRedisLimiter(client redis.Scripter) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		client:  client,
		script:  redis.NewScript(fixedWindowScript),
		timeout: 250 * time.Millisecond,
	}
}

// Allow counts a hit for key. Redis failures fail open.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	allowed, err := l.script.Run(ctx, l.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		telemetry.Warn("ratelimit.redis_failed", map[string]any{"key": key, "error": err})
		return true
	}
	return allowed == 1
}

// RedisRateLimit limits requests per client IP in the given window.
func RedisRateLimit(limiter *RedisLimiter, prefix string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = c.ClientIP()
		}
		key := "ratelimit:" + prefix + ":" + principal
		if limiter.Allow(c.Request.Context(), key, limit, window) {
			c.Next()
			return
		}
		c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{"group": prefix})
	}
}
