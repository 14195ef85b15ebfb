package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/shared/server/respond"
	"novel-assistant/internal/shared/telemetry"
)

const panicMessage = "Unexpected server error"

// Recovery turns a handler panic into a 500. Browser page requests get the
// HTML error page, everything else the JSON error body. A panic after the
// response was started only aborts the chain.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			telemetry.Error("http.panic", map[string]any{
				"request_id": RequestIDFromContext(c),
				"error":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
			})
			switch {
			case c.Writer.Written():
				c.Abort()
			case respond.PrefersHTML(c):
				respond.ErrorPage(c, http.StatusInternalServerError, "internal", panicMessage)
			default:
				respond.Error(c, http.StatusInternalServerError, "internal", panicMessage, nil)
			}
		}()
		c.Next()
	}
}
