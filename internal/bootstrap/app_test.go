package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"ai-resume-saas/internal/ratelimit"
	"ai-resume-saas/internal/shared/auth"
	"ai-resume-saas/internal/shared/config"
)

func devConfig(t *testing.T) config.Config {
	return config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		PublicBaseURL:   "http://localhost:8080",
		ResumeStore:     "memory",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "perplexity",
		LLMModel:        "sonar-pro",
	}
}

func bearer(t *testing.T, app *App, email string) string {
	t.Helper()
	token, err := app.Signer.Sign(auth.Claims{Email: email, RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-" + email}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func TestBuildDevDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), devConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close(context.Background())

	if app.ResumesRepo == nil || app.LLM == nil || app.Router == nil {
		t.Fatalf("expected dependencies to be wired")
	}
	if _, ok := app.Limiter.(*ratelimit.SlidingWindow); !ok {
		t.Fatalf("expected in-memory limiter, got %T", app.Limiter)
	}
}

func TestBuildProductionRequiresSecret(t *testing.T) {
	cfg := devConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected missing JWT secret to fail in production")
	}
}

func TestUploadThenAnalyzeWithoutProvider(t *testing.T) {
	gin.SetMode(gin.TestMode)
	app, err := Build(context.Background(), devConfig(t))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close(context.Background())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("resume", "cv.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(strings.Repeat("Go engineer with Postgres experience. ", 4))); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, app, "jane@example.com"))
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected upload 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		ResumeID string `json:"resumeId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decode upload: %v", err)
	}

	// Another identity cannot analyze it.
	payload, _ := json.Marshal(map[string]string{"resumeId": uploaded.ResumeID})
	req = httptest.NewRequest(http.MethodPost, "/api/resume/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, app, "other@example.com"))
	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign resume, got %d", resp.Code)
	}

	// The owner reaches the provider, which is not configured in this test.
	req = httptest.NewRequest(http.MethodPost, "/api/resume/analyze", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, app, "jane@example.com"))
	resp = httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without provider, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Analysis failed") {
		t.Fatalf("expected generic message, got %s", resp.Body.String())
	}
}
