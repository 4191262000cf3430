package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dronesgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/drones"
)

func (s *Server) addDronesRoutes(r *gin.Engine) {
	r.GET("/api/drones", func(c *gin.Context) {
		var arr []dronesgorm.DroneRecord
		if err := s.db.Order("created_at DESC").Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, arr)
	})

	r.GET("/api/drones/:id", func(c *gin.Context) {
		var rec dronesgorm.DroneRecord
		if err := s.db.Where("drone_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Drone not found")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.POST("/api/drones", func(c *gin.Context) {
		var in struct {
			DroneID  string              `json:"droneId" binding:"required"`
			PlayerID string              `json:"playerId" binding:"required"`
			Position dronesgorm.Position `json:"position"`
			Status   string              `json:"status"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		rec := dronesgorm.DroneRecord{DroneID: in.DroneID, PlayerID: in.PlayerID, Position: in.Position, Status: in.Status}
		if rec.Status == "" {
			rec.Status = "active"
		}
		if err := s.db.Create(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "create failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("drone_create", user, rec.DroneID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusCreated, rec)
	})

	r.PUT("/api/drones/:id", func(c *gin.Context) {
		var in struct {
			PlayerID *string              `json:"playerId"`
			Position *dronesgorm.Position `json:"position"`
			Status   *string              `json:"status"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		var rec dronesgorm.DroneRecord
		if err := s.db.Where("drone_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Drone not found")
			return
		}
		if in.PlayerID != nil {
			rec.PlayerID = *in.PlayerID
		}
		if in.Position != nil {
			rec.Position = *in.Position
		}
		if in.Status != nil {
			rec.Status = *in.Status
		}
		if err := s.db.Save(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "update failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("drone_update", user, rec.DroneID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, rec)
	})

	r.DELETE("/api/drones/:id", func(c *gin.Context) {
		res := s.db.Where("drone_id = ?", c.Param("id")).Delete(&dronesgorm.DroneRecord{})
		if res.Error != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "delete failed")
			return
		}
		if res.RowsAffected == 0 {
			s.respondError(c, http.StatusNotFound, "not_found", "Drone not found")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("drone_delete", user, c.Param("id"), map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, gin.H{"message": "Drone deleted"})
	})
}
