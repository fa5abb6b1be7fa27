package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/applications"
	googleauth "jobportal-backend/internal/auth"
	"jobportal-backend/internal/companies"
	"jobportal-backend/internal/documents"
	"jobportal-backend/internal/jobs"
	"jobportal-backend/internal/notify"
	"jobportal-backend/internal/profiles"
	"jobportal-backend/internal/services/health"
	"jobportal-backend/internal/shared/config"
	"jobportal-backend/internal/shared/metrics"
	"jobportal-backend/internal/shared/server/middleware"
	"jobportal-backend/internal/uploads"
	"jobportal-backend/internal/users"
)

const (
	authRedisLimit  = 20
	authRedisWindow = time.Minute
)

// RouterDeps carries the handlers mounted on the engine. Nil handlers are skipped.
type RouterDeps struct {
	Config             config.Config
	Health             *health.Service
	UserHandler        *users.Handler
	GoogleAuth         *googleauth.GoogleService
	CompanyHandler     *companies.Handler
	JobHandler         *jobs.Handler
	ProfileHandler     *profiles.Handler
	ApplicationHandler *applications.Handler
	DocumentHandler    *documents.Handler
	UploadsHandler     *uploads.Handler
	RedisLimiter       *middleware.RedisLimiter
	RateLimiter        *middleware.RateLimiter
}

// DefaultRateLimitRules returns the per-group token buckets used by the API.
func DefaultRateLimitRules() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		middleware.AuthRateLimitGroup:  {Rate: 0.2, Burst: 5},
		middleware.WriteRateLimitGroup: {Rate: 2, Burst: 20},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		tagNotifications(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    DefaultRateLimitRules(),
			GroupFor: middleware.GroupByRoute,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService(nil, nil)
	}
	api.GET("/health", healthSvc.Handle)

	public := api.Group("")
	if deps.UserHandler != nil {
		credentials := public.Group("", middleware.RedisRateLimit(deps.RedisLimiter, "auth", authRedisLimit, authRedisWindow))
		deps.UserHandler.RegisterPublicRoutes(credentials)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(public)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterPublicRoutes(public)
	}

	private := api.Group("", middleware.RequireActor())
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(private)
	}
	if deps.CompanyHandler != nil {
		deps.CompanyHandler.RegisterRoutes(private)
	}
	if deps.JobHandler != nil {
		deps.JobHandler.RegisterRoutes(private)
	}
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.RegisterRoutes(private)
	}
	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.RegisterRoutes(private)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(private)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(private)
	}

	return r
}

// tagNotifications copies the request id onto the request context so
// notifications sent on behalf of the request can be correlated.
func tagNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := notify.WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
