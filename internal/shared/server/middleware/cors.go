package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows browser clients from the configured origins. An empty list or
// "*" allows any origin without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	var origins []string
	allowAll := false
	for _, o := range allowedOrigins {
		trimmed := strings.TrimRight(strings.TrimSpace(o), "/")
		switch {
		case trimmed == "*":
			allowAll = true
		case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
			origins = append(origins, trimmed)
		}
	}
	if len(origins) == 0 {
		allowAll = true
	}

	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        10 * time.Minute,
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}
