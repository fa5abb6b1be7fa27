package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"jobportal-backend/internal/shared/server/respond"
)

const (
	defaultRateLimitGroup = "DEFAULT"
	// AuthRateLimitGroup covers credential endpoints.
	AuthRateLimitGroup = "AUTH"
	// WriteRateLimitGroup covers mutating requests.
	WriteRateLimitGroup = "WRITE"

	// maxIdleBuckets bounds the limiter map; full buckets are dropped past it.
	maxIdleBuckets = 10000
)

// RateLimitRule is a token bucket refilled at Rate per second up to Burst.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) disabled() bool {
	return r.Rate <= 0 || r.Burst <= 0
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter holds one x/time/rate limiter per principal and group.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	now      func() time.Time
}

// NewRateLimiter builds a limiter reading the clock from now (time.Now when nil).
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{limiters: make(map[string]*rate.Limiter), now: now}
}

// Allow spends one token for key. When the bucket is empty nothing is spent
// and the wait until the next token is returned.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.disabled() {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		l.prune(now)
		lim = rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)
		l.limiters[key] = lim
	}

	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *RateLimiter) prune(now time.Time) {
	if len(l.limiters) < maxIdleBuckets {
		return
	}
	for key, lim := range l.limiters {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(l.limiters, key)
		}
	}
}

// RateLimit applies cfg.Rules keyed by the authenticated user, or the client
// IP for anonymous calls. Groups without a rule pass through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		who := strings.TrimSpace(UserIDFromContext(c))
		if who == "" {
			who = c.ClientIP()
		}
		allowed, wait := cfg.Limiter.Allow(group+":"+who, rule)
		if allowed {
			c.Next()
			return
		}

		if wait < time.Millisecond {
			wait = time.Second
		}
		secs := int((wait + time.Second - 1) / time.Second)
		c.Header("Retry-After", strconv.Itoa(secs))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests", gin.H{
			"group":        group,
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}

// GroupByRoute puts credential endpoints in AUTH and other mutations in WRITE.
func GroupByRoute(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	switch {
	case strings.HasPrefix(route, "/api/v1/auth/login"), strings.HasPrefix(route, "/api/v1/auth/register"):
		return AuthRateLimitGroup
	case c.Request.Method == http.MethodPost, c.Request.Method == http.MethodPut,
		c.Request.Method == http.MethodPatch, c.Request.Method == http.MethodDelete:
		return WriteRateLimitGroup
	default:
		return defaultRateLimitGroup
	}
}
