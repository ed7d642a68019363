package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lotcheck/logger"
)

const healthCheckTimeout = 2 * time.Second

// RegisterHealthRoutes registers health and metrics endpoints.
func (s *Server) RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", s.handleHealth)
	if s.deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.deps.Metrics.Handler()))
	}
}

// handleHealth answers 503 when the user database is unreachable.
func (s *Server) handleHealth(c *gin.Context) {
	if s.deps.Database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.deps.Database.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("Health check failed", logger.String("dependency", "database"), logger.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
