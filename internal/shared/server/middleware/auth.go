package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/shared/auth"
	"ai-resume-saas/internal/shared/server/respond"
)

const (
	identityKey    = "identity"
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// Auth validates bearer JWTs and stores the caller identity in context.
// Requests under one of publicPrefixes pass through without identity.
func Auth(verifier TokenVerifier, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" || verifier == nil {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
			return
		}

		claims, err := verifier.Verify(token)
		if err != nil || claims.Identity() == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthenticated", "Unauthorized", nil)
			return
		}

		c.Set(identityKey, claims.Identity())
		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Name != "" {
			c.Set(userNameKey, claims.Name)
		}
		if claims.Picture != "" {
			c.Set(userPictureKey, claims.Picture)
		}
		c.Next()
	}
}

// IdentityFromContext fetches the caller identity set by the auth middleware.
func IdentityFromContext(c *gin.Context) string {
	return stringFromContext(c, identityKey)
}

// UserIDFromContext fetches the token subject set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
