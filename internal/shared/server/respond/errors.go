package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/apperr"
	"jobportal-backend/internal/shared/telemetry"
)

// ErrorBody is the client-visible part of a failed response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error aborts the request with {"error": {...}} and logs it. Server-side
// failures log at error level, client mistakes at warn.
func Error(c *gin.Context, status int, code, message string, details any) {
	logFailure(c, status, code, message, nil)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:    code,
		Message: message,
		Details: details,
	}})
}

// Err renders err through its apperr kind. The cause of internal and
// unavailable errors goes to the log only.
func Err(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)
	var cause error
	if status >= http.StatusInternalServerError {
		cause = err
	}
	logFailure(c, status, string(kind), apperr.MessageOf(err), cause)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{
		Code:    string(kind),
		Message: apperr.MessageOf(err),
		Details: apperr.DetailsOf(err),
	}})
}

func logFailure(c *gin.Context, status int, code, message string, cause error) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"request_id": c.GetString("requestId"),
	}
	for key, field := range map[string]string{"userId": "user_id", "userRole": "role"} {
		if v := c.GetString(key); v != "" {
			fields[field] = v
		}
	}
	if cause != nil {
		fields["error"] = cause
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
		return
	}
	telemetry.Warn("http.error", fields)
}
