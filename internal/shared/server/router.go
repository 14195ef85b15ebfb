package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/analyses"
	"novel-assistant/internal/documents"
	"novel-assistant/internal/services/health"
	"novel-assistant/internal/shared/config"
	"novel-assistant/internal/shared/metrics"
	"novel-assistant/internal/shared/server/middleware"
	"novel-assistant/internal/shared/telemetry"
	"novel-assistant/internal/uploads"
)

const uploadRateGroup = "UPLOAD"

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	Health          *health.Service
	UploadHandler   *uploads.Handler
	DocumentHandler *documents.Handler
	AnalysisHandler *analyses.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	if err := r.SetTrustedProxies(deps.Config.TrustedProxies); err != nil {
		telemetry.Warn("router.trusted_proxies_invalid", map[string]any{"error": err.Error()})
		_ = r.SetTrustedProxies(nil)
	}
	r.SetHTMLTemplate(uploads.Templates())
	r.MaxMultipartMemory = deps.Config.MaxUploadBytes

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				uploadRateGroup: {Rate: deps.Config.UploadRatePerSec, Burst: deps.Config.UploadRateBurst},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())
	deps.UploadHandler.RegisterPages(r)

	api := r.Group("/api/v1")
	api.GET("/health", health.Handler(deps.Health))
	deps.UploadHandler.RegisterRoutes(api)
	deps.DocumentHandler.RegisterRoutes(api)
	deps.AnalysisHandler.RegisterRoutes(api)

	return r
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	switch c.FullPath() {
	case "/upload", "/api/v1/documents":
		return uploadRateGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
