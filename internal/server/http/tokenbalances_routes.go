package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	tokenbalancesgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/tokenbalances"
)

func (s *Server) addTokenBalancesRoutes(r *gin.Engine) {
	r.GET("/api/token-balances", func(c *gin.Context) {
		page, limit, offset := pageParams(c)
		db := s.db.Model(&tokenbalancesgorm.TokenBalanceRecord{})
		var total int64
		if err := db.Count(&total).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "count failed")
			return
		}
		var arr []tokenbalancesgorm.TokenBalanceRecord
		if err := db.Order("pending_balance DESC").Limit(limit).Offset(offset).Find(&arr).Error; err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "list failed")
			return
		}
		s.JSON(c, http.StatusOK, pageBody(arr, total, page, limit))
	})

	r.GET("/api/token-balances/:id", func(c *gin.Context) {
		var rec tokenbalancesgorm.TokenBalanceRecord
		if err := s.db.Where("player_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Token balance not found")
			return
		}
		s.JSON(c, http.StatusOK, rec)
	})

	r.POST("/api/token-balances", func(c *gin.Context) {
		var in struct {
			PlayerID       string  `json:"playerId" binding:"required"`
			PendingBalance float64 `json:"pendingBalance"`
			MintedBalance  float64 `json:"mintedBalance"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		rec := tokenbalancesgorm.TokenBalanceRecord{PlayerID: in.PlayerID, PendingBalance: in.PendingBalance, MintedBalance: in.MintedBalance}
		if err := s.db.Create(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "create failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("token_balance_create", user, rec.PlayerID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusCreated, rec)
	})

	r.PUT("/api/token-balances/:id", func(c *gin.Context) {
		var in struct {
			PendingBalance *float64 `json:"pendingBalance"`
			MintedBalance  *float64 `json:"mintedBalance"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		var rec tokenbalancesgorm.TokenBalanceRecord
		if err := s.db.Where("player_id = ?", c.Param("id")).First(&rec).Error; err != nil {
			s.respondError(c, http.StatusNotFound, "not_found", "Token balance not found")
			return
		}
		if in.PendingBalance != nil {
			rec.PendingBalance = *in.PendingBalance
		}
		if in.MintedBalance != nil {
			rec.MintedBalance = *in.MintedBalance
		}
		if err := s.db.Save(&rec).Error; err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "update failed")
			return
		}
		user, _, _ := s.auth(c.Request)
		s.auditLog("token_balance_update", user, rec.PlayerID, map[string]string{"ip": c.ClientIP()})
		s.JSON(c, http.StatusOK, rec)
	})

	r.DELETE("/api/token-balances/:id", func(c *gin.Context) {
		res := s.db.Where("player_id = ?", c.Param("id")).Delete(&tokenbalancesgorm.TokenBalanceRecord{})
		if res.Error != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "delete failed")
			return
		}
		if res.RowsAffected == 0 {
			s.respondError(c, http.StatusNotFound, "not_found", "Token balance not found")
			return
		}
		s.JSON(c, http.StatusOK, gin.H{"message": "Token balance deleted"})
	})
}
