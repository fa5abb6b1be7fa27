// Package health reports dependency readiness for the health endpoint.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/server/respond"
	"jobportal-backend/internal/shared/storage/db"
)

const checkTimeout = 2 * time.Second

// Pinger is satisfied by *redis.Client through a small adapter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB    *sql.DB
	Redis Pinger
}

// NewService constructs a new health service. Both dependencies are optional.
func NewService(database *sql.DB, redis Pinger) *Service {
	return &Service{DB: database, Redis: redis}
}

// Status pings each configured dependency. ok is false when any check fails.
func (s *Service) Status(ctx context.Context) (map[string]string, bool) {
	checks := map[string]string{"database": "disabled", "redis": "disabled"}
	ok := true

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if s.DB != nil {
		checks["database"] = "up"
		if err := db.HealthCheck(ctx, s.DB); err != nil {
			checks["database"] = "down"
			ok = false
		}
	}
	if s.Redis != nil {
		checks["redis"] = "up"
		if err := s.Redis.Ping(ctx); err != nil {
			checks["redis"] = "down"
			ok = false
		}
	}
	return checks, ok
}

// Handle serves GET /health.
func (s *Service) Handle(c *gin.Context) {
	checks, ok := s.Status(c.Request.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, gin.H{"ok": ok, "checks": checks})
}
