// Package http wires the gin route tree and the HTTP server.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/logging"
	"github.com/openhaven/matchgrid/internal/infrastructure/monitoring/prometheus"
	"github.com/openhaven/matchgrid/internal/interfaces/http/handlers"
	"github.com/openhaven/matchgrid/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and infrastructure the route tree
// needs.
type RouterConfig struct {
	MatchHandler   *handlers.MatchHandler
	HeatmapHandler *handlers.HeatmapHandler
	HealthHandler  *handlers.HealthHandler

	CORS    *middleware.CORSConfig
	Logger  logging.Logger
	Metrics *prometheus.Metrics

	// Mode is gin's run mode: debug, release or test.
	Mode string
}

// NewRouter builds the complete route tree.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics))
	}
	corsCfg := middleware.DefaultCORSConfig()
	if cfg.CORS != nil {
		corsCfg = *cfg.CORS
	}
	r.Use(middleware.CORS(corsCfg))

	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.Liveness)
		r.GET("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	{
		if cfg.MatchHandler != nil {
			api.POST("/match/applicant/:id", cfg.MatchHandler.MatchApplicant)
			api.GET("/match/applicant/:id", cfg.MatchHandler.ListMatches)
			api.DELETE("/match/applicant/:id", cfg.MatchHandler.DeleteMatches)
			api.POST("/match/batch", cfg.MatchHandler.BatchMatch)
		}
		if cfg.HeatmapHandler != nil {
			api.GET("/heatmap", cfg.HeatmapHandler.Heatmap)
		}
	}
	return r
}
