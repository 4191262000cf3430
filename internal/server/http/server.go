// Package httpserver exposes the CMS admin API: entity CRUD for the
// dashboard, admin authentication, and the game-server synchronization
// endpoints (geo-object assignment, drone spawn config push/pull).
package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	auditchain "github.com/shootingdapp/cms/internal/audit/chain"
	"github.com/shootingdapp/cms/internal/auth/token"
	"github.com/shootingdapp/cms/internal/gameserver"
	adminsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/admins"
	"github.com/shootingdapp/cms/internal/service/droneconfig"
	"github.com/shootingdapp/cms/internal/service/geoobjects"
)

type Server struct {
	db       *gorm.DB
	admins   *adminsgorm.Repo
	jwtMgr   *token.Manager
	audit    *auditchain.Writer
	geo      *geoobjects.Service
	droneCfg *droneconfig.Service

	sessionTTL time.Duration
	startedAt  time.Time
	requests   atomic.Int64
	errors5xx  atomic.Int64

	// login rate limiting (in-memory): key = ip|username -> attempts within window
	loginAttempts map[string][]time.Time
	loginMu       sync.Mutex

	httpSrv *http.Server
}

// Options carries the collaborators the server needs; audit may be nil.
type Options struct {
	DB         *gorm.DB
	Admins     *adminsgorm.Repo
	JWT        *token.Manager
	Audit      *auditchain.Writer
	Geo        *geoobjects.Service
	DroneCfg   *droneconfig.Service
	SessionTTL time.Duration
}

func NewServer(o Options) *Server {
	ttl := o.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Server{
		db:            o.DB,
		admins:        o.Admins,
		jwtMgr:        o.JWT,
		audit:         o.Audit,
		geo:           o.Geo,
		droneCfg:      o.DroneCfg,
		sessionTTL:    ttl,
		startedAt:     time.Now(),
		loginAttempts: map[string][]time.Time{},
	}
}

// Engine builds the gin engine with the full middleware chain and routes.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(s.ginReqID(), s.ginCORS(), s.ginLogger(), s.ginAuthGuard(), gin.Recovery())
	s.addAuthRoutes(r)
	s.addPlayersRoutes(r)
	s.addDronesRoutes(r)
	s.addGeoObjectsRoutes(r)
	s.addAchievementsRoutes(r)
	s.addRewardsRoutes(r)
	s.addTokenBalancesRoutes(r)
	s.addDroneConfigRoutes(r)
	s.addOpsRoutes(r)
	return r
}

// Run serves until ctx is canceled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.Engine()}
	errCh := make(chan error, 1)
	go func() { errCh <- s.httpSrv.ListenAndServe() }()
	slog.Info("http server listening", "addr", addr)
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shctx)
	}
}

// ginReqID injects/propagates an X-Request-ID for traceability.
func (s *Server) ginReqID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.Request.Header.Get("X-Request-ID")
		if strings.TrimSpace(rid) == "" {
			b := make([]byte, 16)
			if _, err := rand.Read(b); err == nil {
				rid = hex.EncodeToString(b)
			} else {
				rid = fmt.Sprintf("%d", time.Now().UnixNano())
			}
		}
		c.Set("reqid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)
		c.Next()
	}
}

func (s *Server) ginCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) ginLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		dur := time.Since(start)
		st := c.Writer.Status()
		s.requests.Add(1)
		lvl := slog.LevelInfo
		if st >= 500 {
			lvl = slog.LevelError
			s.errors5xx.Add(1)
		} else if st >= 400 {
			lvl = slog.LevelWarn
		}
		rid, _ := c.Get("reqid")
		slog.Log(c.Request.Context(), lvl, "http",
			"method", c.Request.Method, "path", c.Request.URL.Path,
			"status", st, "duration", dur, "ip", c.ClientIP(), "reqid", rid)
	}
}

// ginAuthGuard enforces a valid admin session on every /api/* route except
// login. Static paths and health/metrics stay public.
func (s *Server) ginAuthGuard() gin.HandlerFunc {
	skip := map[string]bool{
		"/api/auth/login": true,
	}
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if c.Request.Method == http.MethodOptions || !strings.HasPrefix(p, "/api/") || skip[p] {
			c.Next()
			return
		}
		if s.jwtMgr == nil {
			// session secret missing is a server misconfiguration, not a client fault
			slog.Error("session token manager not configured")
			s.respondError(c, http.StatusInternalServerError, "internal_error", "server configuration error")
			c.Abort()
			return
		}
		if _, _, ok := s.auth(c.Request); !ok {
			s.respondError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			c.Abort()
			return
		}
		c.Next()
	}
}

// auth extracts the admin username and roles from Authorization: Bearer <token>.
func (s *Server) auth(r *http.Request) (string, []string, bool) {
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") && s.jwtMgr != nil {
		user, roles, err := s.jwtMgr.Verify(strings.TrimPrefix(authz, "Bearer "))
		if err == nil {
			return user, roles, true
		}
	}
	return "", nil, false
}

// respondError sends the unified JSON error body.
func (s *Server) respondError(c *gin.Context, status int, code, message string) {
	type errBody struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	}
	rid, _ := c.Get("reqid")
	c.JSON(status, errBody{Code: code, Message: message, RequestID: fmt.Sprint(rid)})
}

// respondSyncError maps game-server client failures for the assignment and
// config-sync endpoints: upstream auth/unavailable -> 502, validation -> 400,
// anything else -> 500. Nothing below this layer swallows errors.
func (s *Server) respondSyncError(c *gin.Context, err error) {
	var ve *geoobjects.ValidationError
	var ae *gameserver.AuthError
	var ue *gameserver.UnavailableError
	var ce *gameserver.ConfigError
	switch {
	case errors.As(err, &ve):
		s.respondError(c, http.StatusBadRequest, "bad_request", ve.Msg)
	case errors.As(err, &ae), errors.As(err, &ue):
		s.respondError(c, http.StatusBadGateway, "bad_gateway", "Failed to sync with game server")
	case errors.As(err, &ce):
		// never leak which key is missing to the client
		slog.Error("game server configuration missing", "key", ce.Missing)
		s.respondError(c, http.StatusInternalServerError, "internal_error", "server configuration error")
	default:
		s.respondError(c, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// allowLogin rate-limits login attempts per ip|username.
func (s *Server) allowLogin(ip, username string) bool {
	key := fmt.Sprintf("%s|%s", strings.TrimSpace(ip), strings.TrimSpace(username))
	now := time.Now()
	window := now.Add(-5 * time.Minute)
	s.loginMu.Lock()
	defer s.loginMu.Unlock()
	arr := s.loginAttempts[key]
	kept := arr[:0]
	for _, t := range arr {
		if t.After(window) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= 10 {
		s.loginAttempts[key] = kept
		return false
	}
	kept = append(kept, now)
	s.loginAttempts[key] = kept
	return true
}

func (s *Server) auditLog(kind, actor, target string, meta map[string]string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Log(kind, actor, target, meta); err != nil {
		slog.Error("audit write failed", "kind", kind, "error", err)
	}
}
