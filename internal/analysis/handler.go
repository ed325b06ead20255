package analysis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/shared/server/middleware"
	"ai-resume-saas/internal/shared/server/respond"
)

// Handler exposes the analysis pipeline over HTTP.
type Handler struct {
	Svc     *Service
	limiter middleware.Limiter
}

// NewHandler constructs a Handler gated by limiter.
func NewHandler(svc *Service, limiter middleware.Limiter) *Handler {
	return &Handler{Svc: svc, limiter: limiter}
}

// RegisterRoutes attaches the analyze route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/analyze", middleware.RateLimit(h.limiter), h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Invalid request body", nil)
		return
	}

	res, err := h.Svc.Analyze(c.Request.Context(), identity, req)
	if err != nil {
		status, code, msg := errorResponse(err)
		respond.Error(c, status, code, msg, nil)
		return
	}

	respond.OK(c, gin.H{"success": true, "analysis": res})
}

func errorResponse(err error) (int, string, string) {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "Unauthorized"
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input", "resumeText or resumeId is required"
	case errors.Is(err, ErrInputTooShort):
		return http.StatusBadRequest, "input_too_short", "Resume text too short or invalid"
	case errors.Is(err, ErrNotFoundOrUnauthorized):
		return http.StatusNotFound, "not_found", "Resume not found or unauthorized"
	case errors.Is(err, ErrDependencyUnavailable):
		return http.StatusInternalServerError, "dependency_unavailable", "Could not fetch resume"
	case errors.Is(err, llm.ErrMalformedOutput):
		return http.StatusInternalServerError, "malformed_output", "Invalid AI response format"
	default:
		return http.StatusInternalServerError, "analysis_failed", "Analysis failed"
	}
}
