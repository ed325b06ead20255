// Package respond writes the API's JSON bodies. Errors always use the flat
// {error, code, details?} shape the UI switches on.
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-resume-saas/internal/shared/telemetry"
)

// ErrorResponse is the error body returned to clients.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// JSON writes payload with status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 response.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Error logs the failure and aborts with an ErrorResponse. 5xx are logged
// as errors, everything else at info.
func Error(c *gin.Context, status int, code, message string, details any) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"route":      c.FullPath(),
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if identity := c.GetString("identity"); identity != "" {
		fields["identity"] = identity
	}
	if status >= http.StatusInternalServerError {
		telemetry.Error("http.error", fields)
	} else {
		telemetry.Info("http.error", fields)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code, Details: details})
}
