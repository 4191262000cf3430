package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shootingdapp/cms/internal/auth/token"
	"github.com/shootingdapp/cms/internal/config"
	"github.com/shootingdapp/cms/internal/gameserver"
	adminsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/admins"
	droneconfiggorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/droneconfig"
	playersgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/players"
	"github.com/shootingdapp/cms/internal/service/droneconfig"
	"github.com/shootingdapp/cms/internal/service/geoobjects"
)

type testEnv struct {
	srv    *Server
	engine *gin.Engine
	db     *gorm.DB
	token  string
}

// newTestEnv wires a full server against an in-memory database and the given
// game-server base URL, and returns a valid admin session token.
func newTestEnv(t *testing.T, gameServerURL string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, mig := range []func(*gorm.DB) error{
		adminsgorm.AutoMigrate, playersgorm.AutoMigrate, droneconfiggorm.AutoMigrate,
	} {
		if err := mig(db); err != nil {
			t.Fatalf("migrate: %v", err)
		}
	}
	admins := adminsgorm.NewRepo(db)
	if _, err := admins.Create(context.Background(), "admin", "s3cret-pw", "admin"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	gs := gameserver.NewClient(config.GameServer{
		BaseURL:       gameServerURL,
		ServiceKey:    "svc-key",
		ServiceSecret: "svc-secret",
		Timeout:       2 * time.Second,
	})
	jwtMgr := token.NewManager("test-session-secret")
	srv := NewServer(Options{
		DB:         db,
		Admins:     admins,
		JWT:        jwtMgr,
		Geo:        geoobjects.NewService(gs),
		DroneCfg:   droneconfig.NewService(droneconfiggorm.NewRepo(db), gs),
		SessionTTL: time.Hour,
	})
	tok, err := jwtMgr.Sign("admin", []string{"admin"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return &testEnv{srv: srv, engine: srv.Engine(), db: db, token: tok}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestAuthGuardRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	w := env.do(t, http.MethodGet, "/api/players", nil, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body struct {
		Code string `json:"code"`
	}
	decode(t, w, &body)
	if body.Code != "unauthorized" {
		t.Fatalf("code = %q, want unauthorized", body.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")

	w := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong"}, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "nobody", "password": "s3cret-pw"}, false)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "s3cret-pw"}, false)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", w.Code, w.Body.String())
	}
	var body struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	decode(t, w, &body)
	if body.Token == "" || body.User.Username != "admin" || body.User.Role != "admin" {
		t.Fatalf("unexpected login body: %s", w.Body.String())
	}

	// the freshly issued token must pass the guard
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	rec := httptest.NewRecorder()
	env.engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d, want 200", rec.Code)
	}
}

func TestLoginRateLimit(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	var last int
	for i := 0; i < 11; i++ {
		w := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong"}, false)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("11th attempt status = %d, want 429", last)
	}
}

func TestPlayerCRUD(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")

	w := env.do(t, http.MethodPost, "/api/players", gin.H{
		"playerId":      "player-1",
		"walletAddress": "0xabc",
		"stats":         gin.H{"kills": 3, "hits": 10},
	}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}
	w = env.do(t, http.MethodPost, "/api/players", gin.H{"playerId": "player-2", "stats": gin.H{"kills": 7}}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body.String())
	}

	// leaderboard ordering: most kills first
	w = env.do(t, http.MethodGet, "/api/players", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list []struct {
		PlayerID string `json:"playerId"`
	}
	decode(t, w, &list)
	if len(list) != 2 || list[0].PlayerID != "player-2" {
		t.Fatalf("unexpected order: %s", w.Body.String())
	}

	// partial update leaves other fields intact
	w = env.do(t, http.MethodPut, "/api/players/player-1", gin.H{"pushToken": "tok-1"}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", w.Code, w.Body.String())
	}
	var upd struct {
		WalletAddress string `json:"walletAddress"`
		PushToken     string `json:"pushToken"`
	}
	decode(t, w, &upd)
	if upd.WalletAddress != "0xabc" || upd.PushToken != "tok-1" {
		t.Fatalf("partial update clobbered fields: %s", w.Body.String())
	}

	w = env.do(t, http.MethodDelete, "/api/players/player-1", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/players/player-1", nil, true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
	w = env.do(t, http.MethodDelete, "/api/players/player-1", nil, true)
	if w.Code != http.StatusNotFound {
		t.Fatalf("double delete status = %d, want 404", w.Code)
	}
}

func TestGeoObjectAssign(t *testing.T) {
	var gotPath, gotKey string
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Service-Key")
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"assigned","objectId":"obj-9"}`))
	}))
	defer upstream.Close()
	env := newTestEnv(t, upstream.URL)

	w := env.do(t, http.MethodPost, "/api/geo-objects/assign", gin.H{
		"playerId": "player-42",
		"location": gin.H{"latitude": 1.5, "longitude": 2.5, "altitude": 3.5},
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("assign status = %d: %s", w.Code, w.Body.String())
	}
	if gotPath != "/geo-objects/assign" {
		t.Fatalf("upstream path = %q", gotPath)
	}
	if gotKey != "svc-key" {
		t.Fatalf("Service-Key = %q", gotKey)
	}
	// short lat/lng/alt keys on the wire toward the game server
	if !strings.Contains(string(gotBody), `"lat":1.5`) || !strings.Contains(string(gotBody), `"playerId":"player-42"`) {
		t.Fatalf("unexpected upstream payload: %s", gotBody)
	}
	var resp struct {
		Status string `json:"status"`
	}
	decode(t, w, &resp)
	if resp.Status != "assigned" {
		t.Fatalf("response not relayed: %s", w.Body.String())
	}
}

func TestGeoObjectAssignValidation(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	w := env.do(t, http.MethodPost, "/api/geo-objects/assign", gin.H{
		"playerId": "  ",
		"location": gin.H{"latitude": 1, "longitude": 2, "altitude": 3},
	}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
}

func TestGeoObjectAssignUpstreamAuthFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad service token"}`))
	}))
	defer upstream.Close()
	env := newTestEnv(t, upstream.URL)

	w := env.do(t, http.MethodPost, "/api/geo-objects/assign", gin.H{
		"playerId": "player-42",
		"location": gin.H{"latitude": 1, "longitude": 2, "altitude": 3},
	}, true)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", w.Code, w.Body.String())
	}
	var body struct {
		Message string `json:"message"`
	}
	decode(t, w, &body)
	if body.Message != "Failed to sync with game server" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestDroneConfigPush(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		buf := new(bytes.Buffer)
		buf.ReadFrom(r.Body)
		gotBody = buf.Bytes()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()
	env := newTestEnv(t, upstream.URL)

	w := env.do(t, http.MethodPut, "/api/drone-config", gin.H{
		"xMin": -50.0, "xMax": 50.0, "yMin": 5.0, "yMax": 40.0, "zMin": -50.0, "zMax": 50.0,
	}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("push status = %d: %s", w.Code, w.Body.String())
	}
	if gotMethod != http.MethodPut || gotPath != "/api/drone-config" {
		t.Fatalf("upstream call = %s %s", gotMethod, gotPath)
	}
	if !strings.Contains(string(gotBody), `"xMin":-50`) {
		t.Fatalf("unexpected upstream payload: %s", gotBody)
	}

	var rec droneconfiggorm.SpawnConfigRecord
	if err := env.db.First(&rec).Error; err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if rec.XMin != -50 || rec.YMax != 40 {
		t.Fatalf("local config not persisted: %+v", rec)
	}
}

func TestDroneConfigPushMissingBound(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	w := env.do(t, http.MethodPut, "/api/drone-config", gin.H{
		"xMin": -50.0, "xMax": 50.0, "yMin": 5.0, "yMax": 40.0, "zMin": -50.0,
	}, true)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body.String())
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	if body.Error == "" {
		t.Fatalf("missing error field: %s", w.Body.String())
	}
}

func TestDroneConfigPushUpstreamDownKeepsLocalWrite(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()
	env := newTestEnv(t, upstream.URL)

	w := env.do(t, http.MethodPut, "/api/drone-config", gin.H{
		"xMin": -1.0, "xMax": 1.0, "yMin": 2.0, "yMax": 3.0, "zMin": -4.0, "zMax": 4.0,
	}, true)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", w.Code, w.Body.String())
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	if body.Error != "Failed to sync with game server" {
		t.Fatalf("error = %q", body.Error)
	}

	// local write precedes the remote call and is not rolled back
	var rec droneconfiggorm.SpawnConfigRecord
	if err := env.db.First(&rec).Error; err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if rec.XMin != -1 || rec.ZMax != 4 {
		t.Fatalf("local config missing attempted write: %+v", rec)
	}
}

func TestDroneConfigPullOverwritesLocal(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"xMin":-7,"xMax":7,"yMin":1,"yMax":2,"zMin":-3,"zMax":3}`))
	}))
	defer upstream.Close()
	env := newTestEnv(t, upstream.URL)

	w := env.do(t, http.MethodGet, "/api/drone-config", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("pull status = %d: %s", w.Code, w.Body.String())
	}
	var rec droneconfiggorm.SpawnConfigRecord
	if err := env.db.First(&rec).Error; err != nil {
		t.Fatalf("load local config: %v", err)
	}
	if rec.XMin != -7 || rec.YMax != 2 {
		t.Fatalf("local config not overwritten: %+v", rec)
	}
}

func TestHealthzIsPublic(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	w := env.do(t, http.MethodGet, "/healthz", nil, false)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", w.Code, w.Body.String())
	}
}
