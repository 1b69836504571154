package server

import (
	"github.com/gin-gonic/gin"

	"tokencount-backend/internal/analysis"
	"tokencount-backend/internal/shared/config"
	"tokencount-backend/internal/shared/metrics"
	"tokencount-backend/internal/shared/server/middleware"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	AnalysisHandler *analysis.Handler
	// RateLimiter is shared across requests; nil builds a fresh one.
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.BodyLimit(cfg.MaxUploadBytes),
		middleware.Auth(cfg.AuthRequireIdentity),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: deps.RateLimiter,
			GroupFor: func(c *gin.Context) string {
				if c.FullPath() == "/metrics" {
					return "UNLIMITED"
				}
				return "DEFAULT"
			},
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(r)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":4001"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
