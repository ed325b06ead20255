// Package auth signs users in with Google and hands the UI a session token
// whose identity keys their resumes and rate limit.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "ai-resume-saas/internal/shared/auth"
	"ai-resume-saas/internal/shared/server/respond"
	"ai-resume-saas/internal/shared/telemetry"
)

const (
	defaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	defaultStateTTL    = 5 * time.Minute
	subjectPrefix      = "google:"
)

// TokenSigner issues session tokens after a successful login.
type TokenSigner interface {
	Sign(claims sharedauth.Claims) (string, error)
}

// GoogleConfig holds the OAuth client registration.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// UIRedirectURL receives the session token as ?token=.
	UIRedirectURL string
}

func (c GoogleConfig) configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != "" && c.UIRedirectURL != ""
}

// GoogleService runs the OAuth code flow.
type GoogleService struct {
	cfg         GoogleConfig
	oauth       *oauth2.Config
	signer      TokenSigner
	userInfoURL string
	states      *stateStore
}

// NewGoogleService builds a GoogleService that signs sessions with signer.
func NewGoogleService(cfg GoogleConfig, signer TokenSigner) *GoogleService {
	return &GoogleService{
		cfg: cfg,
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
		signer:      signer,
		userInfoURL: defaultUserInfoURL,
		states:      newStateStore(defaultStateTTL),
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.cfg.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in is not configured", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauth.AuthCodeURL(s.states.issue()))
}

func (s *GoogleService) callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		telemetry.Warn("auth.provider_denied", map[string]any{"error": errParam})
		respond.Error(c, http.StatusUnauthorized, "access_denied", "Sign-in was cancelled", nil)
		return
	}
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.exchange_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}

	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		telemetry.Error("auth.userinfo_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	claims := profile.claims()
	signed, err := s.signer.Sign(claims)
	if err != nil {
		telemetry.Error("auth.sign_failed", map[string]any{"err": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}

	redirectURL, err := appendToken(s.cfg.UIRedirectURL, signed)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}
	telemetry.Info("auth.login", map[string]any{"identity": claims.Identity(), "verified": profile.VerifiedEmail})
	c.Redirect(http.StatusFound, redirectURL)
}

type googleProfile struct {
	Sub           string `json:"sub"`
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// claims keys the session on the email only when Google verified it;
// otherwise the identity falls back to the Google subject.
func (p googleProfile) claims() sharedauth.Claims {
	claims := sharedauth.Claims{
		Name:             p.Name,
		Picture:          p.Picture,
		RegisteredClaims: jwt.RegisteredClaims{Subject: subjectPrefix + p.Sub},
	}
	if p.VerifiedEmail {
		claims.Email = strings.ToLower(strings.TrimSpace(p.Email))
	}
	return claims
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := s.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	// v2 userinfo reports "id" rather than "sub".
	if p.Sub == "" {
		p.Sub = p.ID
	}
	if p.Sub == "" {
		return googleProfile{}, errors.New("userinfo missing subject")
	}
	return p, nil
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
