package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/shared/metrics"
	"ai-resume-saas/internal/shared/server/respond"
	"ai-resume-saas/internal/shared/telemetry"
)

// Recovery turns a panic into a generic 500. Panic values never reach the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			metrics.IncPanic()
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"identity":   IdentityFromContext(c),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
				"panic":      rec,
				"stack":      string(debug.Stack()),
			})
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Internal server error", nil)
		}()
		c.Next()
	}
}
