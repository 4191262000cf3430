package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	playersgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/players"
)

func (s *Server) addPlayersRoutes(r *gin.Engine) {
	// Leaderboard ordering: best killers first.
	r.GET("/api/players", func(c *gin.Context) {
		var arr []playersgorm.PlayerRecord
		if err := s.db.Order("stat_kills DESC, stat_hits DESC, stat_drone_hits DESC").Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, arr)
	})

	r.GET("/api/players/:id", func(c *gin.Context) {
		var rec playersgorm.PlayerRecord
		if err := s.db.Where("player_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Player not found")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.POST("/api/players", func(c *gin.Context) {
		var in struct {
			PlayerID      string            `json:"playerId" binding:"required"`
			WalletAddress string            `json:"walletAddress"`
			PushToken     string            `json:"pushToken"`
			Stats         playersgorm.Stats `json:"stats"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		rec := playersgorm.PlayerRecord{PlayerID: in.PlayerID, WalletAddress: in.WalletAddress, PushToken: in.PushToken, Stats: in.Stats}
		if err := s.db.Create(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "create failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("player_create", user, rec.PlayerID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusCreated, rec)
	})

	r.PUT("/api/players/:id", func(c *gin.Context) {
		var in struct {
			WalletAddress *string            `json:"walletAddress"`
			PushToken     *string            `json:"pushToken"`
			Stats         *playersgorm.Stats `json:"stats"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		var rec playersgorm.PlayerRecord
		if err := s.db.Where("player_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Player not found")
			return
		}
		if in.WalletAddress != nil {
			rec.WalletAddress = *in.WalletAddress
		}
		if in.PushToken != nil {
			rec.PushToken = *in.PushToken
		}
		if in.Stats != nil {
			rec.Stats = *in.Stats
		}
		if err := s.db.Save(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "update failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("player_update", user, rec.PlayerID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, rec)
	})

	r.DELETE("/api/players/:id", func(c *gin.Context) {
		res := s.db.Where("player_id = ?", c.Param("id")).Delete(&playersgorm.PlayerRecord{})
		if res.Error != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "delete failed")
			return
		}
		if res.RowsAffected == 0 {
			s.respondError(c, http.StatusNotFound, "not_found", "Player not found")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("player_delete", user, c.Param("id"), map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, gin.H{"message": "Player deleted"})
	})
}
