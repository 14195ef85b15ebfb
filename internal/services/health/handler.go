package health

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/shared/server/respond"
)

// Handler serves the health endpoint.
func Handler(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
}
