package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func serve(t *testing.T, svc *Service) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", svc.Handle)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return w.Code, body
}

func TestHealthWithoutDependencies(t *testing.T) {
	code, body := serve(t, NewService(nil, nil))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["ok"] != true {
		t.Fatalf("expected ok true, got %v", body["ok"])
	}
	checks := body["checks"].(map[string]any)
	if checks["database"] != "disabled" || checks["redis"] != "disabled" {
		t.Fatalf("unexpected checks: %v", checks)
	}
}

func TestHealthDatabaseUp(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer conn.Close()
	mock.ExpectPing()

	code, body := serve(t, NewService(conn, stubPinger{}))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	checks := body["checks"].(map[string]any)
	if checks["database"] != "up" || checks["redis"] != "up" {
		t.Fatalf("unexpected checks: %v", checks)
	}
}

func TestHealthRedisDown(t *testing.T) {
	code, body := serve(t, NewService(nil, stubPinger{err: errors.New("connection refused")}))
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if body["ok"] != false {
		t.Fatalf("expected ok false, got %v", body["ok"])
	}
	checks := body["checks"].(map[string]any)
	if checks["redis"] != "down" {
		t.Fatalf("expected redis down, got %v", checks["redis"])
	}
}

func TestRedisPingerNil(t *testing.T) {
	if RedisPinger(nil) != nil {
		t.Fatalf("expected nil pinger for nil client")
	}
}
