package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders  = "Content-Type, Authorization, X-Request-Id"
	corsExposeHeaders = "X-Request-Id, Retry-After"
)

// CORS answers preflights and tags responses for the configured UI origins.
// "*" allows any origin without credentials. Retry-After is exposed so the
// UI can back off after a 429.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowedOrigins))
	wildcard := false
	for _, o := range allowedOrigins {
		switch trimmed := strings.TrimRight(strings.TrimSpace(o), "/"); trimmed {
		case "":
		case "*":
			wildcard = true
		default:
			origins[trimmed] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			h := c.Writer.Header()
			h.Add("Vary", "Origin")
			_, listed := origins[origin]
			switch {
			case listed:
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			case wildcard:
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if listed || wildcard {
				h.Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
				h.Set("Access-Control-Max-Age", "600")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
