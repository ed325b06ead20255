package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/shared/server/middleware"
	"ai-resume-saas/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/upload", h.upload)
	rg.GET("/resume/upload", h.list)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id/file", h.download)
}

type resumeResponse struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	OriginalName string    `json:"originalName"`
	FileType     string    `json:"fileType"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handler) upload(c *gin.Context) {
	owner := middleware.IdentityFromContext(c)
	if owner == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadSize+1<<20)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}
	if fileHeader.Size > MaxUploadSize {
		respond.Error(c, http.StatusBadRequest, "validation_error", "File exceeds 10MB limit", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	rec, err := h.Svc.Upload(c.Request.Context(), owner, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_type", "Unsupported file format", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid upload", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "upload_failed", "Upload failed", nil)
		}
		return
	}

	respond.OK(c, gin.H{
		"success":       true,
		"resumeId":      rec.ID,
		"extractedText": rec.ExtractedText,
		"fileUrl":       rec.URL,
	})
}

func (h *Handler) list(c *gin.Context) {
	owner := middleware.IdentityFromContext(c)
	if owner == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}

	recs, err := h.Svc.List(c.Request.Context(), owner)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch resumes", nil)
		return
	}

	resp := make([]resumeResponse, 0, len(recs))
	for _, rec := range recs {
		resp = append(resp, resumeResponse{
			ID:           rec.ID,
			URL:          rec.URL,
			OriginalName: rec.OriginalName,
			FileType:     rec.FileType,
			Size:         rec.Size,
			CreatedAt:    rec.CreatedAt,
		})
	}
	respond.OK(c, gin.H{"success": true, "resumes": resp})
}

func (h *Handler) download(c *gin.Context) {
	owner := middleware.IdentityFromContext(c)
	if owner == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Unauthorized", nil)
		return
	}

	rec, body, err := h.Svc.Open(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Resume not found or unauthorized", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Could not fetch resume", nil)
		return
	}
	defer body.Close()

	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(rec.OriginalName))
	c.DataFromReader(http.StatusOK, rec.Size, rec.FileType, body, nil)
}
