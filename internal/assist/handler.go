package assist

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/shared/server/middleware"
	"ai-resume-saas/internal/shared/server/respond"
	"ai-resume-saas/internal/shared/telemetry"
)

// Handler wires assistant routes to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches assistant routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job/match", h.jobMatch)
	rg.POST("/ai/cover-letter", h.coverLetter)
	rg.POST("/ai/interview", h.interview)
	rg.POST("/ai/summarize-jd", h.summarizeJD)
}

type jobMatchRequest struct {
	ResumeText     string `json:"resumeText" binding:"required"`
	JobDescription string `json:"jobDescription" binding:"required"`
}

type coverLetterRequest struct {
	ResumeText     string `json:"resumeText" binding:"required"`
	JobDescription string `json:"jobDescription" binding:"required"`
	CompanyName    string `json:"companyName" binding:"required"`
}

type interviewRequest struct {
	JobTitle     string `json:"jobTitle" binding:"required"`
	ResumeText   string `json:"resumeText" binding:"required"`
	NumQuestions int    `json:"numQuestions"`
}

type summarizeRequest struct {
	JobDescription string `json:"jobDescription" binding:"required"`
}

func (h *Handler) jobMatch(c *gin.Context) {
	var req jobMatchRequest
	if !bind(c, &req, "Missing resume text or job description") {
		return
	}
	res, err := h.Svc.JobMatch(c.Request.Context(), req.ResumeText, req.JobDescription)
	if err != nil {
		fail(c, err, "Failed to match job")
		return
	}
	respond.OK(c, gin.H{"success": true, "matchResult": res})
}

func (h *Handler) coverLetter(c *gin.Context) {
	var req coverLetterRequest
	if !bind(c, &req, "Missing required fields") {
		return
	}
	letter, err := h.Svc.CoverLetter(c.Request.Context(), req.ResumeText, req.JobDescription, req.CompanyName)
	if err != nil {
		fail(c, err, "Failed to generate cover letter")
		return
	}
	respond.OK(c, gin.H{"success": true, "coverLetter": letter})
}

func (h *Handler) interview(c *gin.Context) {
	var req interviewRequest
	if !bind(c, &req, "Job title and resume text are required") {
		return
	}
	questions, err := h.Svc.Interview(c.Request.Context(), req.JobTitle, req.ResumeText, req.NumQuestions)
	if err != nil {
		fail(c, err, "Failed to generate questions")
		return
	}
	respond.OK(c, gin.H{"success": true, "questions": questions})
}

func (h *Handler) summarizeJD(c *gin.Context) {
	var req summarizeRequest
	if !bind(c, &req, "Job description is required") {
		return
	}
	summary, err := h.Svc.SummarizeJD(c.Request.Context(), req.JobDescription)
	if err != nil {
		fail(c, err, "Failed to summarize job description")
		return
	}
	respond.OK(c, gin.H{"success": true, "summary": summary})
}

func bind(c *gin.Context, req any, message string) bool {
	if middleware.IdentityFromContext(c) == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
		return false
	}
	if err := c.ShouldBindJSON(req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", message, nil)
		return false
	}
	return true
}

func fail(c *gin.Context, err error, message string) {
	if errors.Is(err, ErrInvalidInput) {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	fields := map[string]any{
		"identity": middleware.IdentityFromContext(c),
		"route":    c.FullPath(),
		"err":      err,
	}
	if raw, ok := llm.RawOutput(err); ok {
		fields["raw"] = raw
	}
	telemetry.Error("assist.failed", fields)
	respond.Error(c, http.StatusInternalServerError, "assist_failed", message, nil)
}
