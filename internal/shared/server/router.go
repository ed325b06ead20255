package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/services/health"
	"ai-resume-saas/internal/shared/config"
	"ai-resume-saas/internal/shared/metrics"
	"ai-resume-saas/internal/shared/server/middleware"
	"ai-resume-saas/internal/shared/server/respond"
)

// PublicPrefixes are served without a bearer token.
var PublicPrefixes = []string{"/api/health", "/api/auth/google/", "/metrics", "/files/"}

// RouteRegistrar attaches a feature's routes to the API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// RouterDeps lists everything the router needs.
type RouterDeps struct {
	Config   config.Config
	Verifier middleware.TokenVerifier
	// LocalFilesDir is served under /files when objects live on local disk.
	LocalFilesDir string
	// Health defaults to an empty service that always reports ok.
	Health   *health.Service
	Features []RouteRegistrar
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.HTTP(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Verifier, PublicPrefixes...),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.LocalFilesDir != "" {
		r.StaticFS("/files", gin.Dir(deps.LocalFilesDir, false))
	}

	checks := deps.Health
	if checks == nil {
		checks = health.NewService()
	}

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		report := checks.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	})
	registerMeRoutes(api)
	for _, f := range deps.Features {
		if f != nil {
			f.RegisterRoutes(api)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
