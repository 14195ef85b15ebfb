package respond

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Page renders a named HTML template. Pages carry per-upload results, so
// they are never cached.
func Page(c *gin.Context, status int, name string, data any) {
	c.Header("Cache-Control", "no-store")
	c.HTML(status, name, data)
}

// PrefersHTML reports whether the client asked for an HTML page rather than
// JSON. API routes under /api/ always get JSON.
func PrefersHTML(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return false
	}
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
