package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/server/respond"
	"jobportal-backend/internal/shared/telemetry"
)

// Recovery turns handler panics into a 500 error body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"user_id":    c.GetString(userIDKey),
				"error":      rec,
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			if !c.Writer.Written() {
				respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
			}
			c.Abort()
		}()
		c.Next()
	}
}
