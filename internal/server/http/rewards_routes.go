package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	rewardsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/rewards"
)

func (s *Server) addRewardsRoutes(r *gin.Engine) {
	r.GET("/api/rewards", func(c *gin.Context) {
		page, limit, offset := pageParams(c)
		db := s.db.Model(&rewardsgorm.RewardRecord{})
		if pid := c.Query("playerId"); pid != "" {
			db = db.Where("player_id = ?", pid)
		}
		if rt := c.Query("rewardType"); rt != "" {
			if !rewardsgorm.ValidType(rt) {
				s.respondError(c, http.StatusBadRequest, "bad_request", "invalid reward type")
				return
			}
			db = db.Where("reward_type = ?", rt)
		}
		if sd := c.Query("startDate"); sd != "" {
			t, err := time.Parse(time.RFC3339, sd)
			if err != nil {
				s.respondError(c, http.StatusBadRequest, "bad_request", "startDate must be a valid date")
				return
			}
			db = db.Where("timestamp >= ?", t)
		}
		if ed := c.Query("endDate"); ed != "" {
			t, err := time.Parse(time.RFC3339, ed)
			if err != nil {
				s.respondError(c, http.StatusBadRequest, "bad_request", "endDate must be a valid date")
				return
			}
			db = db.Where("timestamp <= ?", t)
		}
		var total int64
		if err := db.Count(&total).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "count failed")
			return
		}
		var arr []rewardsgorm.RewardRecord
		if err := db.Order("timestamp DESC").Limit(limit).Offset(offset).Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, pageBody(arr, total, page, limit))
	})

	// Per-player totals grouped by reward type, for the player detail page.
	r.GET("/api/rewards/player/:playerId/stats", func(c *gin.Context) {
		type row struct {
			RewardType  string  `json:"rewardType"`
			TotalAmount float64 `json:"totalAmount"`
			Count       int64   `json:"count"`
		}
		var rows []row
		err := s.db.Model(&rewardsgorm.RewardRecord{}).
			Select("reward_type, SUM(amount) AS total_amount, COUNT(*) AS count").
			Where("player_id = ?", c.Param("playerId")).
			Group("reward_type").
			Scan(&rows).Error
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "stats failed")
			return
		}
		s.JSON(c, http.StatusOK, rows)
	})

	r.GET("/api/rewards/:id", func(c *gin.Context) {
		var rec rewardsgorm.RewardRecord
		if err := s.db.First(&rec, c.Param("id")).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Reward history not found")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.POST("/api/rewards", func(c *gin.Context) {
		var in struct {
			PlayerID   string     `json:"playerId" binding:"required"`
			RewardType string     `json:"rewardType" binding:"required"`
			Amount     float64    `json:"amount" binding:"required"`
			Timestamp  *time.Time `json:"timestamp"`
		}
		if err := c.BindJSON(&in); err != nil || !rewardsgorm.ValidType(in.RewardType) {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		rec := rewardsgorm.RewardRecord{PlayerID: in.PlayerID, RewardType: in.RewardType, Amount: in.Amount, Timestamp: time.Now().UTC()}
		if in.Timestamp != nil {
			rec.Timestamp = *in.Timestamp
		}
		if err := s.db.Create(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "create failed")
			return
		}
		s.JSON(c, http.StatusCreated, rec)
	})

	r.PUT("/api/rewards/:id", func(c *gin.Context) {
		var in struct {
			RewardType *string  `json:"rewardType"`
			Amount     *float64 `json:"amount"`
		}
		if err := c.BindJSON(&in); err != nil || (in.RewardType != nil && !rewardsgorm.ValidType(*in.RewardType)) {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		var rec rewardsgorm.RewardRecord
		if err := s.db.First(&rec, c.Param("id")).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Reward history not found")
			return
		}
		if in.RewardType != nil {
			rec.RewardType = *in.RewardType
		}
		if in.Amount != nil {
			rec.Amount = *in.Amount
		}
		if err := s.db.Save(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "update failed")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.DELETE("/api/rewards/:id", func(c *gin.Context) {
		res := s.db.Delete(&rewardsgorm.RewardRecord{}, c.Param("id"))
		if res.Error != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "delete failed")
			return
		}
		if res.RowsAffected == 0 {
			s.respondError(c, http.StatusNotFound, "not_found", "Reward history not found")
			return
		}
		s.JSON(c, http.StatusOK, gin.H{"message": "Reward history deleted"})
	})
}
