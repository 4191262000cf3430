package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shootingdapp/cms/internal/logging"
)

// Operational endpoints. Unauthenticated on purpose: load balancers and
// scrapers hit these without a session.
func (s *Server) addOpsRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	r.GET("/metrics", func(c *gin.Context) {
		s.JSON(c, http.StatusOK, gin.H{
			"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
			"http": gin.H{
				"requests":   s.requests.Load(),
				"errors_5xx": s.errors5xx.Load(),
			},
			"log_records": logging.Counters(),
		})
	})
}
