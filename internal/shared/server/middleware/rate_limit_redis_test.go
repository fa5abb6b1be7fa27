package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func TestNilRedisLimiterAllows(t *testing.T) {
	var l *RedisLimiter
	if !l.Allow(context.Background(), "k", 1, time.Minute) {
		t.Fatalf("nil limiter must allow")
	}
	if NewRedisLimiter(nil) != nil {
		t.Fatalf("expected nil limiter for nil client")
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	quietTelemetry(t)
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisLimiter(client)
	if !l.Allow(context.Background(), "k", 1, time.Minute) {
		t.Fatalf("expected fail-open when redis is unreachable")
	}
}

func TestRedisRateLimitMiddlewarePassThroughWithoutLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RedisRateLimit(nil, "auth", 1, time.Minute))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/login", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
	}
}
