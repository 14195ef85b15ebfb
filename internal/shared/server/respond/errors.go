package respond

import (
	"github.com/gin-gonic/gin"

	"novel-assistant/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorPageTemplate is the template rendered by ErrorPage.
const ErrorPageTemplate = "error.html"

// Error sends a standardized JSON error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	logError(c, status, code, message)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// ErrorPage renders the HTML error page for browser-facing routes.
func ErrorPage(c *gin.Context, status int, code, message string) {
	logError(c, status, code, message)
	Page(c, status, ErrorPageTemplate, gin.H{
		"Status":  status,
		"Code":    code,
		"Message": message,
	})
	c.Abort()
}

func logError(c *gin.Context, status int, code, message string) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if documentID := c.GetString("documentId"); documentID != "" {
		fields["document_id"] = documentID
	}
	telemetry.Error("http.error", fields)
}
