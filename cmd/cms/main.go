package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	auditchain "github.com/shootingdapp/cms/internal/audit/chain"
	"github.com/shootingdapp/cms/internal/auth/token"
	"github.com/shootingdapp/cms/internal/config"
	"github.com/shootingdapp/cms/internal/db"
	"github.com/shootingdapp/cms/internal/gameserver"
	achievementsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/achievements"
	adminsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/admins"
	droneconfiggorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/droneconfig"
	dronesgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/drones"
	geoobjectsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/geoobjects"
	playersgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/players"
	rewardsgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/rewards"
	tokenbalancesgorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/tokenbalances"
	"github.com/shootingdapp/cms/internal/logging"
	httpserver "github.com/shootingdapp/cms/internal/server/http"
	"github.com/shootingdapp/cms/internal/service/droneconfig"
	"github.com/shootingdapp/cms/internal/service/geoobjects"
	"github.com/shootingdapp/cms/internal/telemetry"
)

func main() {
	var cfgFile string
	root := &cobra.Command{
		Use:   "cms",
		Short: "Shooting dApp CMS backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.SetEnvPrefix("CMS")
			viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
			viper.AutomaticEnv()
			if cfgFile != "" {
				viper.SetConfigFile(cfgFile)
				if err := viper.ReadInConfig(); err != nil {
					slog.Warn("read config", "error", err)
				} else {
					slog.Info("config loaded", "file", viper.ConfigFileUsed())
				}
			}
			cfg := config.FromViper(viper.GetViper())
			logging.Setup(cfg.Log)
			return run(cfg)
		},
	}

	root.Flags().StringVar(&cfgFile, "config", "", "config file (yaml), e.g. configs/cms.yaml")
	root.Flags().String("http.addr", ":3001", "http api listen address")
	root.Flags().String("db.dsn", "", "database DSN/URL; postgres://... or sqlite file path")
	root.Flags().String("game_server.base_url", "", "game server base URL")
	root.Flags().String("auth.jwt_secret", "", "admin session hs256 secret")
	_ = viper.BindPFlags(root.Flags())

	if err := root.Execute(); err != nil {
		slog.Error("cms exit", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOtel, err := telemetry.Setup(ctx, cfg.Otel)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownOtel(context.Background()) }()

	gdb, err := db.Open(cfg.DBDSN)
	if err != nil {
		return err
	}
	if err := migrate(gdb); err != nil {
		return err
	}

	admins := adminsgorm.NewRepo(gdb)
	if user := os.Getenv("CMS_ADMIN_USERNAME"); user != "" {
		if pw := os.Getenv("CMS_ADMIN_PASSWORD"); pw != "" {
			if err := admins.SeedDefault(ctx, user, pw); err != nil {
				return err
			}
		}
	}

	aw, err := auditchain.NewWriter(cfg.Audit.Path)
	if err != nil {
		return err
	}
	defer aw.Close()

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("auth.jwt_secret not set; admin API requests will be rejected")
	}
	var jm *token.Manager
	if cfg.Auth.JWTSecret != "" {
		jm = token.NewManager(cfg.Auth.JWTSecret)
	}

	gs := gameserver.NewClient(cfg.GameServer)
	srv := httpserver.NewServer(httpserver.Options{
		DB:         gdb,
		Admins:     admins,
		JWT:        jm,
		Audit:      aw,
		Geo:        geoobjects.NewService(gs),
		DroneCfg:   droneconfig.NewService(droneconfiggorm.NewRepo(gdb), gs),
		SessionTTL: cfg.Auth.SessionTTL,
	})
	if err := srv.Run(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	slog.Info("cms stopped")
	return nil
}

func migrate(gdb *gorm.DB) error {
	for _, mig := range []func(*gorm.DB) error{
		adminsgorm.AutoMigrate,
		playersgorm.AutoMigrate,
		dronesgorm.AutoMigrate,
		geoobjectsgorm.AutoMigrate,
		achievementsgorm.AutoMigrate,
		rewardsgorm.AutoMigrate,
		tokenbalancesgorm.AutoMigrate,
		droneconfiggorm.AutoMigrate,
	} {
		if err := mig(gdb); err != nil {
			return err
		}
	}
	return nil
}
