package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is read once at startup and treated as read-only afterwards.
type Config struct {
	HTTPAddr string
	DBDSN    string

	GameServer GameServer
	Auth       Auth
	Log        Log
	Otel       Otel
	Audit      Audit
}

// GameServer holds the outbound connection settings for the authoritative
// game server. BaseURL and ServiceKey/ServiceSecret are deliberately allowed
// to be empty here; their absence is reported at first use, not at startup.
type GameServer struct {
	BaseURL       string
	ServiceKey    string
	ServiceSecret string
	Timeout       time.Duration
}

type Auth struct {
	JWTSecret  string
	SessionTTL time.Duration
}

type Log struct {
	Level      string
	Format     string // console|json
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Otel struct {
	Enabled      bool
	CollectorURL string
	ServiceName  string
	Environment  string
}

type Audit struct {
	Path string
}

// FromViper extracts a Config from v. Defaults mirror the development setup;
// every key is overridable via CMS_* environment variables.
func FromViper(v *viper.Viper) Config {
	v.SetDefault("http.addr", ":3001")
	v.SetDefault("game_server.timeout", "15s")
	v.SetDefault("auth.session_ttl", "24h")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("otel.service_name", "cms")
	v.SetDefault("audit.path", "logs/audit.log")

	return Config{
		HTTPAddr: v.GetString("http.addr"),
		DBDSN:    v.GetString("db.dsn"),
		GameServer: GameServer{
			BaseURL:       strings.TrimRight(v.GetString("game_server.base_url"), "/"),
			ServiceKey:    v.GetString("game_server.service_key"),
			ServiceSecret: v.GetString("game_server.service_secret"),
			Timeout:       v.GetDuration("game_server.timeout"),
		},
		Auth: Auth{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			SessionTTL: v.GetDuration("auth.session_ttl"),
		},
		Log: Log{
			Level:      v.GetString("log.level"),
			Format:     v.GetString("log.format"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age"),
			Compress:   v.GetBool("log.compress"),
		},
		Otel: Otel{
			Enabled:      v.GetBool("otel.enabled"),
			CollectorURL: v.GetString("otel.collector_url"),
			ServiceName:  v.GetString("otel.service_name"),
			Environment:  v.GetString("otel.environment"),
		},
		Audit: Audit{Path: v.GetString("audit.path")},
	}
}
