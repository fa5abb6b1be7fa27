package jobs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/server/middleware"
)

func newTestRouter(svc *Service, actor *access.Actor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if actor != nil {
			middleware.SetActor(c, actor)
		}
		c.Next()
	})
	h := NewHandler(svc)
	api := r.Group("/api/v1")
	h.RegisterPublicRoutes(api)
	h.RegisterRoutes(api)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateAndListPublic(t *testing.T) {
	svc := newService()

	w := serve(newTestRouter(svc, acme), http.MethodPost, "/api/v1/jobs", `{"title":"Go Engineer","location":"Remote"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Message string `json:"message"`
		Job     Job    `json:"job"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Job.CompanyName != "Acme" {
		t.Fatalf("expected company name from approved profile, got %q", created.Job.CompanyName)
	}

	w = serve(newTestRouter(svc, nil), http.MethodGet, "/api/v1/jobs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var listed []Job
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.Job.ID {
		t.Fatalf("unexpected listing: %+v", listed)
	}

	w = serve(newTestRouter(svc, nil), http.MethodGet, "/api/v1/jobs/"+created.Job.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUpdateRequiresOwner(t *testing.T) {
	svc := newService()
	job, err := svc.Create(t.Context(), acme, CreateInput{Title: "Go Engineer"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	w := serve(newTestRouter(svc, globex), http.MethodPatch, "/api/v1/jobs/"+job.ID, `{"status":"closed"}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}

	w = serve(newTestRouter(svc, acme), http.MethodPatch, "/api/v1/jobs/"+job.ID, `{"status":"closed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	w := serve(newTestRouter(newService(), nil), http.MethodGet, "/api/v1/jobs?status=archived", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestGetMissingJob(t *testing.T) {
	w := serve(newTestRouter(newService(), nil), http.MethodGet, "/api/v1/jobs/nope", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
