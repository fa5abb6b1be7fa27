package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/auth"
	"jobportal-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userRoleKey  = "userRole"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	actorKey     = "actor"
)

// Auth verifies a bearer token when present and stores the actor in context.
// Requests without a token continue anonymously; RequireActor guards private routes.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/auth/google/") {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token", nil)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token", nil)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "missing or invalid token", nil)
			return
		}
		role, ok := access.ParseRole(claims.Role)
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "token carries no valid role", nil)
			return
		}

		SetActor(c, &access.Actor{
			ID:    claims.Subject,
			Role:  role,
			Email: claims.Email,
			Name:  claims.Name,
		})
		c.Next()
	}
}

// RequireActor rejects requests that reached it without an authenticated actor.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFromContext(c) == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Authentication required", nil)
			return
		}
		c.Next()
	}
}

// SetActor stores the actor and its flattened identity fields.
func SetActor(c *gin.Context, actor *access.Actor) {
	if actor == nil {
		return
	}
	c.Set(actorKey, actor)
	c.Set(userIDKey, actor.ID)
	c.Set(userRoleKey, string(actor.Role))
	if actor.Email != "" {
		c.Set(userEmailKey, actor.Email)
	}
	if actor.Name != "" {
		c.Set(userNameKey, actor.Name)
	}
}

// ActorFromContext returns the authenticated actor, or nil.
func ActorFromContext(c *gin.Context) *access.Actor {
	if c == nil {
		return nil
	}
	val, _ := c.Get(actorKey)
	actor, _ := val.(*access.Actor)
	return actor
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(userIDKey)
}
