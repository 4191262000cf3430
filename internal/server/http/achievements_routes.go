package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	achievementsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/achievements"
)

func (s *Server) addAchievementsRoutes(r *gin.Engine) {
	r.GET("/api/achievements", func(c *gin.Context) {
		page, limit, offset := pageParams(c)
		db := s.db.Model(&achievementsgorm.AchievementRecord{})
		if pid := c.Query("playerId"); pid != "" {
			db = db.Where("player_id = ?", pid)
		}
		if typ := c.Query("type"); typ != "" {
			db = db.Where("type = ?", typ)
		}
		var total int64
		if err := db.Count(&total).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "count failed")
			return
		}
		var arr []achievementsgorm.AchievementRecord
		if err := db.Order("unlocked_at DESC").Limit(limit).Offset(offset).Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, pageBody(arr, total, page, limit))
	})

	// Convenience view used by the player detail page.
	r.GET("/api/achievements/player/:playerId", func(c *gin.Context) {
		var arr []achievementsgorm.AchievementRecord
		if err := s.db.Where("player_id = ?", c.Param("playerId")).Order("unlocked_at DESC").Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, arr)
	})

	r.GET("/api/achievements/:id", func(c *gin.Context) {
		var rec achievementsgorm.AchievementRecord
		if err := s.db.First(&rec, c.Param("id")).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Achievement not found")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.POST("/api/achievements", func(c *gin.Context) {
		var in struct {
			PlayerID   string     `json:"playerId" binding:"required"`
			Type       string     `json:"type" binding:"required"`
			Milestone  float64    `json:"milestone" binding:"required"`
			UnlockedAt *time.Time `json:"unlockedAt"`
			NFTTokenID string     `json:"nftTokenId"`
		}
		if err := c.BindJSON(&in); err != nil || !achievementsgorm.ValidType(in.Type) {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		rec := achievementsgorm.AchievementRecord{
			PlayerID: in.PlayerID, Type: in.Type, Milestone: in.Milestone,
			UnlockedAt: time.Now().UTC(), NFTTokenID: in.NFTTokenID,
		}
		if in.UnlockedAt != nil {
			rec.UnlockedAt = *in.UnlockedAt
		}
		if err := s.db.Create(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "create failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("achievement_create", user, rec.PlayerID, map[string]string{"ip": c.ClientIP(), "type": rec.Type})
		s.JSON(c, http.StatusCreated, rec)
	})

	r.PUT("/api/achievements/:id", func(c *gin.Context) {
		var in struct {
			Type       *string    `json:"type"`
			Milestone  *float64   `json:"milestone"`
			UnlockedAt *time.Time `json:"unlockedAt"`
			NFTTokenID *string    `json:"nftTokenId"`
		}
		if err := c.BindJSON(&in); err != nil || (in.Type != nil && !achievementsgorm.ValidType(*in.Type)) {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		var rec achievementsgorm.AchievementRecord
		if err := s.db.First(&rec, c.Param("id")).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Achievement not found")
			return
		}
		if in.Type != nil {
			rec.Type = *in.Type
		}
		if in.Milestone != nil {
			rec.Milestone = *in.Milestone
		}
		if in.UnlockedAt != nil {
			rec.UnlockedAt = *in.UnlockedAt
		}
		if in.NFTTokenID != nil {
			rec.NFTTokenID = *in.NFTTokenID
		}
		if err := s.db.Save(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "update failed")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.DELETE("/api/achievements/:id", func(c *gin.Context) {
		res := s.db.Delete(&achievementsgorm.AchievementRecord{}, c.Param("id"))
		if res.Error != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "delete failed")
			return
		}
		if res.RowsAffected == 0 {
			s.respondError(c, http.StatusNotFound, "not_found", "Achievement not found")
			return
		}
		s.JSON(c, http.StatusOK, gin.H{"message": "Achievement deleted"})
	})
}
