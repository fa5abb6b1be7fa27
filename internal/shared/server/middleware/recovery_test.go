package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/shared/telemetry"
)

func TestRecoveryReturns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	prev := telemetry.Output
	telemetry.Output = io.Discard
	defer func() { telemetry.Output = prev }()

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
}
