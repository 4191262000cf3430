package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shootingdapp/cms/internal/gameserver"
	"github.com/shootingdapp/cms/internal/service/droneconfig"
)

// Drone-config endpoints keep the original dashboard contract: `{error: ...}`
// bodies, 502 when the game server sync fails, 500 on storage trouble.
func (s *Server) addDroneConfigRoutes(r *gin.Engine) {
	// GET pulls the authoritative copy from the game server and mirrors it
	// into local storage before returning it.
	r.GET("/api/drone-config", func(c *gin.Context) {
		rec, err := s.droneCfg.Pull(c.Request.Context())
		if err != nil {
			s.droneConfigError(c, err)
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	// PUT upserts locally first, then pushes to the game server. On push
	// failure the local copy keeps the attempted value and the client still
	// sees an error; callers must not assume atomicity.
	r.PUT("/api/drone-config", func(c *gin.Context) {
		var in struct {
			XMin *float64 `json:"xMin" binding:"required"`
			XMax *float64 `json:"xMax" binding:"required"`
			YMin *float64 `json:"yMin" binding:"required"`
			YMax *float64 `json:"yMax" binding:"required"`
			ZMin *float64 `json:"zMin" binding:"required"`
			ZMax *float64 `json:"zMax" binding:"required"`
		}
		if err := c.BindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "all six spawn bounds are required"})
			return
		}
		rec, err := s.droneCfg.Push(c.Request.Context(), droneconfig.Bounds{
			XMin: *in.XMin, XMax: *in.XMax, YMin: *in.YMin, YMax: *in.YMax, ZMin: *in.ZMin, ZMax: *in.ZMax,
		})
		if err != nil {
			s.droneConfigError(c, err)
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("drone_config_push", user, "drone-config", map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, rec)
	})

	// Local read-only view; serves the last-known copy without a sync.
	r.GET("/api/drone-config/local", func(c *gin.Context) {
		rec, err := s.droneCfg.Local(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})
}

func (s *Server) droneConfigError(c *gin.Context, err error) {
	var ae *gameserver.AuthError
	var ue *gameserver.UnavailableError
	if errors.As(err, &ae) || errors.As(err, &ue) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to sync with game server"})
		return
	}
	var ce *gameserver.ConfigError
	if errors.As(err, &ce) {
		slog.Error("drone config sync missing configuration", "key", ce.Missing)
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
