package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	adminsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/admins"
)

func (s *Server) addAuthRoutes(r *gin.Engine) {
	r.POST("/api/auth/login", func(c *gin.Context) {
		if s.admins == nil || s.jwtMgr == nil {
			s.respondError(c, http.StatusServiceUnavailable, "auth_disabled", "auth disabled")
			return
		}
		var in struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.BindJSON(&in); err != nil {
			s.respondError(c, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
		ip := c.ClientIP()
		if !s.allowLogin(ip, in.Username) {
			s.respondError(c, http.StatusTooManyRequests, "rate_limited", "too many login attempts")
			s.auditLog("login_rate_limited", in.Username, "auth", map[string]string{"ip": ip})
			return
		}
		adm, err := s.admins.Verify(c, in.Username, in.Password)
		if err != nil {
			if !errors.Is(err, adminsgorm.ErrInvalidCredentials) {
				s.respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
				return
			}
			s.auditLog("login_fail", in.Username, "auth", map[string]string{"ip": ip, "ua": c.Request.UserAgent()})
			s.respondError(c, http.StatusUnauthorized, "unauthorized", "invalid credentials")
			return
		}
		tok, err := s.jwtMgr.Sign(adm.Username, []string{adm.Role}, s.sessionTTL)
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
			return
		}
		s.auditLog("login", adm.Username, "auth", map[string]string{"ip": ip, "ua": c.Request.UserAgent()})
		s.JSON(c, http.StatusOK, gin.H{"token": tok, "user": gin.H{"username": adm.Username, "role": adm.Role}})
	})

	r.GET("/api/auth/me", func(c *gin.Context) {
		user, roles, ok := s.auth(c.Request)
		if !ok {
			s.respondError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
			return
		}
		s.JSON(c, http.StatusOK, gin.H{"username": user, "roles": roles})
	})
}
