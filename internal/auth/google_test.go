package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"

	"jobportal-backend/internal/access"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/users"
)

type stubIdentities struct {
	got users.OAuthProfile
}

func (s *stubIdentities) SignInOAuth(_ context.Context, p users.OAuthProfile) (users.User, error) {
	s.got = p
	return users.User{ID: "u-1", Email: p.Email, Role: access.RoleJobseeker}, nil
}

func (s *stubIdentities) IssueToken(users.User) (string, error) { return "tok", nil }

func quietLogs(t *testing.T) {
	t.Helper()
	prev := telemetry.Output
	telemetry.Output = io.Discard
	t.Cleanup(func() { telemetry.Output = prev })
}

func testConfig() GoogleConfig {
	return GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://api.example.com/api/v1/auth/google/callback",
		UIRedirect:   "https://portal.example.com/auth/done",
	}
}

func newRouter(svc *GoogleService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func get(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			_, _ = io.WriteString(w, `{"access_token":"at","token_type":"Bearer","expires_in":3600}`)
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = io.WriteString(w, userinfo)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMemoryStatesSingleUse(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	s := NewMemoryStates()
	s.now = func() time.Time { return now }

	_ = s.Put(ctx, "a", time.Minute)
	_ = s.Put(ctx, "old", time.Second)
	now = now.Add(2 * time.Second)

	if ok, _ := s.Consume(ctx, "a"); !ok {
		t.Fatalf("expected fresh state to be accepted")
	}
	if ok, _ := s.Consume(ctx, "a"); ok {
		t.Fatalf("expected state to be single use")
	}
	if ok, _ := s.Consume(ctx, "old"); ok {
		t.Fatalf("expected expired state to be rejected")
	}
}

type fakeRedis struct {
	keys map[string]bool
	err  error
}

func (f *fakeRedis) SetNX(_ context.Context, key string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	if f.err != nil {
		return redis.NewBoolResult(false, f.err)
	}
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) GetDel(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	if !f.keys[key] {
		return redis.NewStringResult("", redis.Nil)
	}
	delete(f.keys, key)
	return redis.NewStringResult("1", nil)
}

func TestRedisStates(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStates(&fakeRedis{keys: map[string]bool{}})

	if err := s.Put(ctx, "abc", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "abc", time.Minute); err == nil {
		t.Fatalf("expected collision error")
	}
	if ok, err := s.Consume(ctx, "abc"); err != nil || !ok {
		t.Fatalf("expected consume ok, got %v %v", ok, err)
	}
	if ok, err := s.Consume(ctx, "abc"); err != nil || ok {
		t.Fatalf("expected second consume to miss, got %v %v", ok, err)
	}

	broken := NewRedisStates(&fakeRedis{err: errors.New("connection refused")})
	if _, err := broken.Consume(ctx, "abc"); err == nil {
		t.Fatalf("expected redis error to surface")
	}
}

func TestWithQuery(t *testing.T) {
	got, err := withQuery("https://portal.example.com/auth/done?next=/jobs", "token", "abc")
	if err != nil {
		t.Fatalf("withQuery: %v", err)
	}
	u, _ := url.Parse(got)
	if u.Query().Get("token") != "abc" || u.Query().Get("next") != "/jobs" {
		t.Fatalf("unexpected url %s", got)
	}
	if _, err := withQuery("", "token", "abc"); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}

func TestStartRedirectsToGoogle(t *testing.T) {
	r := newRouter(NewGoogleService(&stubIdentities{}, testConfig(), nil))

	w := get(r, "/api/v1/auth/google/start")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !strings.HasPrefix(loc, "https://accounts.google.com/") || !strings.Contains(loc, "state=") {
		t.Fatalf("unexpected redirect %s", loc)
	}
}

func TestStartNotConfigured(t *testing.T) {
	quietLogs(t)
	r := newRouter(NewGoogleService(&stubIdentities{}, GoogleConfig{}, nil))
	if w := get(r, "/api/v1/auth/google/start"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	quietLogs(t)
	r := newRouter(NewGoogleService(&stubIdentities{}, testConfig(), nil))

	if w := get(r, "/api/v1/auth/google/callback?state=nope&code=c"); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCallbackIssuesToken(t *testing.T) {
	quietLogs(t)
	google := fakeGoogle(t, `{"id":"g-1","email":"sam@example.com","verified_email":true,"name":"Sam"}`)
	ids := &stubIdentities{}
	states := NewMemoryStates()
	svc := NewGoogleService(ids, testConfig(), states)
	svc.oauth.Endpoint = oauth2.Endpoint{AuthURL: google.URL + "/auth", TokenURL: google.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	svc.userInfoURL = google.URL + "/userinfo"
	_ = states.Put(context.Background(), "st", time.Minute)

	w := get(newRouter(svc), "/api/v1/auth/google/callback?state=st&code=c")
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", w.Code, w.Body.String())
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if loc.Host != "portal.example.com" || loc.Query().Get("token") != "tok" {
		t.Fatalf("unexpected redirect %s", loc)
	}
	if ids.got.Email != "sam@example.com" || ids.got.Name != "Sam" {
		t.Fatalf("unexpected profile %+v", ids.got)
	}
}

func TestCallbackUnverifiedEmailRedirectsWithError(t *testing.T) {
	quietLogs(t)
	google := fakeGoogle(t, `{"id":"g-1","email":"sam@example.com","verified_email":false}`)
	states := NewMemoryStates()
	svc := NewGoogleService(&stubIdentities{}, testConfig(), states)
	svc.oauth.Endpoint = oauth2.Endpoint{TokenURL: google.URL + "/token", AuthStyle: oauth2.AuthStyleInParams}
	svc.userInfoURL = google.URL + "/userinfo"
	_ = states.Put(context.Background(), "st", time.Minute)

	w := get(newRouter(svc), "/api/v1/auth/google/callback?state=st&code=c")
	loc, _ := url.Parse(w.Header().Get("Location"))
	if w.Code != http.StatusFound || loc.Query().Get("error") != "email_unverified" {
		t.Fatalf("expected error redirect, got %d %s", w.Code, loc)
	}
}

func TestCallbackConsentDenied(t *testing.T) {
	quietLogs(t)
	states := NewMemoryStates()
	_ = states.Put(context.Background(), "st", time.Minute)
	r := newRouter(NewGoogleService(&stubIdentities{}, testConfig(), states))

	w := get(r, "/api/v1/auth/google/callback?state=st&error=access_denied")
	loc, _ := url.Parse(w.Header().Get("Location"))
	if w.Code != http.StatusFound || loc.Query().Get("error") != "access_denied" {
		t.Fatalf("expected access_denied redirect, got %d %s", w.Code, loc)
	}
}
