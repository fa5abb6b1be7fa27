// Package auth implements third-party sign-in flows.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"jobportal-backend/internal/shared/server/respond"
	"jobportal-backend/internal/shared/telemetry"
	"jobportal-backend/internal/users"
)

const (
	defaultStateTTL    = 5 * time.Minute
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	signInFailedReason = "oauth_failed"
)

// Identities resolves an external identity to a portal account and issues its session token.
type Identities interface {
	SignInOAuth(ctx context.Context, p users.OAuthProfile) (users.User, error)
	IssueToken(user users.User) (string, error)
}

// GoogleConfig carries the OAuth client settings.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// UIRedirect receives ?token= on success and ?error= on failure.
	UIRedirect string
}

// GoogleService handles Google OAuth sign-in. New accounts start as job seekers.
type GoogleService struct {
	oauth       *oauth2.Config
	identities  Identities
	states      StateStore
	uiRedirect  string
	userInfoURL string
	stateTTL    time.Duration
}

// NewGoogleService builds a GoogleService. A nil states falls back to MemoryStates.
func NewGoogleService(identities Identities, cfg GoogleConfig, states StateStore) *GoogleService {
	if states == nil {
		states = NewMemoryStates()
	}
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		identities:  identities,
		states:      states,
		uiRedirect:  cfg.UIRedirect,
		userInfoURL: googleUserInfoURL,
		stateTTL:    defaultStateTTL,
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauth.ClientID != "" && s.oauth.ClientSecret != "" && s.oauth.RedirectURL != "" && s.uiRedirect != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in is not configured", nil)
		return
	}

	state := uuid.NewString()
	if err := s.states.Put(c.Request.Context(), state, s.stateTTL); err != nil {
		telemetry.Error("auth.google.state_put_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account")))
}

func (s *GoogleService) callback(c *gin.Context) {
	ctx := c.Request.Context()
	state, code := c.Query("state"), c.Query("code")
	if state == "" || (code == "" && c.Query("error") == "") {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}

	ok, err := s.states.Consume(ctx, state)
	if err != nil {
		telemetry.Error("auth.google.state_consume_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusServiceUnavailable, "unavailable", "Service temporarily unavailable", nil)
		return
	}
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	// The user declined consent on Google's side.
	if reason := c.Query("error"); reason != "" {
		s.fail(c, reason, nil)
		return
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		s.fail(c, signInFailedReason, fmt.Errorf("exchange code: %w", err))
		return
	}
	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		s.fail(c, signInFailedReason, err)
		return
	}
	if info.Email == "" {
		s.fail(c, signInFailedReason, errors.New("google profile has no email"))
		return
	}
	if !info.VerifiedEmail {
		s.fail(c, "email_unverified", nil)
		return
	}

	user, err := s.identities.SignInOAuth(ctx, users.OAuthProfile{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	})
	if err != nil {
		s.fail(c, signInFailedReason, err)
		return
	}
	jwt, err := s.identities.IssueToken(user)
	if err != nil {
		s.fail(c, signInFailedReason, err)
		return
	}

	target, err := withQuery(s.uiRedirect, "token", jwt)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	telemetry.Info("auth.google.signed_in", map[string]any{"user_id": user.ID, "role": string(user.Role)})
	c.Redirect(http.StatusFound, target)
}

// fail sends the browser back to the UI with an error code.
func (s *GoogleService) fail(c *gin.Context, reason string, cause error) {
	if cause != nil {
		telemetry.Warn("auth.google.failed", map[string]any{"reason": reason, "error": cause})
	}
	target, err := withQuery(s.uiRedirect, "error", reason)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "auth_failed", "Google sign-in failed", nil)
		return
	}
	c.Redirect(http.StatusFound, target)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}
	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return info, nil
}

func withQuery(rawURL, key, value string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
