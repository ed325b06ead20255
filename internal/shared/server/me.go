package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/shared/server/middleware"
	"ai-resume-saas/internal/shared/server/respond"
)

// meResponse echoes the caller as the API sees them. Identity is the key
// their resumes and rate limit are stored under.
type meResponse struct {
	Identity string `json:"identity"`
	UserID   string `json:"userId"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Picture  string `json:"picture,omitempty"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", func(c *gin.Context) {
		identity := middleware.IdentityFromContext(c)
		if identity == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
			return
		}
		respond.JSON(c, http.StatusOK, meResponse{
			Identity: identity,
			UserID:   middleware.UserIDFromContext(c),
			Email:    middleware.UserEmailFromContext(c),
			Name:     middleware.UserNameFromContext(c),
			Picture:  middleware.UserPictureFromContext(c),
		})
	})
}
