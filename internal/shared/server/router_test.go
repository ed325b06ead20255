package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ai-resume-saas/internal/services/health"
	"ai-resume-saas/internal/shared/auth"
	"ai-resume-saas/internal/shared/config"
)

func newTestRouter(t *testing.T, filesDir string) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer := auth.NewSigner([]byte("test-secret"), time.Hour)
	return NewRouter(RouterDeps{
		Config:        config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:3000"}},
		Verifier:      signer,
		LocalFilesDir: filesDir,
	}), signer
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r, _ := newTestRouter(t, "")

	for _, path := range []string{"/api/health", "/metrics"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}
}

func TestHealthReportsDegradedDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checks := health.NewService()
	checks.Register("mongo", func(context.Context) error { return errors.New("server selection timeout") })
	r := NewRouter(RouterDeps{
		Config:   config.Config{Env: "dev"},
		Verifier: auth.NewSigner([]byte("test-secret"), time.Hour),
		Health:   checks,
	})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	var report health.Report
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.OK || report.Components["mongo"] != "down" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestMeRequiresToken(t *testing.T) {
	r, signer := newTestRouter(t, "")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}

	token, err := signer.Sign(auth.Claims{Email: "Jane@Example.com", Name: "Jane", RegisteredClaims: jwt.RegisteredClaims{Subject: "google:1"}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["identity"] != "jane@example.com" || body["userId"] != "google:1" || body["name"] != "Jane" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestLocalFilesAreServed(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "ai-resume-saas", "abc"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ai-resume-saas", "abc", "1-cv.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r, _ := newTestRouter(t, dir)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/files/ai-resume-saas/abc/1-cv.txt", nil))
	if resp.Code != http.StatusOK || resp.Body.String() != "hello" {
		t.Fatalf("unexpected response %d %q", resp.Code, resp.Body.String())
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
