package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can correlate domain entities.
const (
	ApplicationIDKey    = "applicationId"
	JobIDKey            = "jobId"
	CompanyIDKey        = "companyId"
	StatusTransitionKey = "statusTransition"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":        RequestIDFromContext(c),
			"method":            c.Request.Method,
			"path":              c.Request.URL.Path,
			"route":             c.FullPath(),
			"status":            c.Writer.Status(),
			"status_transition": c.GetString(StatusTransitionKey),
			"duration_ms":       float64(latency.Microseconds()) / 1000.0,
			"user_id":           c.GetString(userIDKey),
			"role":              c.GetString(userRoleKey),
			"application_id":    c.GetString(ApplicationIDKey),
			"job_id":            c.GetString(JobIDKey),
			"company_id":        c.GetString(CompanyIDKey),
			"client_ip":         c.ClientIP(),
			"user_agent":        c.Request.UserAgent(),
		})
	}
}
