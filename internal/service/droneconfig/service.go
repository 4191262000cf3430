// Package droneconfig mirrors the drone spawn configuration between local
// storage and the game server. Push writes locally first and then forwards;
// Pull fetches the authoritative copy and overwrites the local one. The two
// copies can diverge when either side fails or mutates independently;
// convergence only happens on the next explicit Push or Pull.
package droneconfig

import (
	"context"
	"encoding/json"
	"log/slog"

	droneconfiggorm "github.com/shootingdapp/cms/internal/infra/persistence/gorm/droneconfig"
)

type GameServerAPI interface {
	Get(ctx context.Context, path string) (json.RawMessage, error)
	Put(ctx context.Context, path string, body any) (json.RawMessage, error)
}

const remotePath = "/api/drone-config"

// Bounds is the wire shape shared with the game server: the bounding box
// within which drones may spawn. min<=max per axis is intended but not
// enforced; the game server is lenient and the dashboard sends raw input.
type Bounds struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
	ZMin float64 `json:"zMin"`
	ZMax float64 `json:"zMax"`
}

type Service struct {
	repo *droneconfiggorm.Repo
	gs   GameServerAPI
}

func NewService(repo *droneconfiggorm.Repo, gs GameServerAPI) *Service {
	return &Service{repo: repo, gs: gs}
}

// Push upserts the config locally, then forwards it to the game server.
// The local write happens-before the remote call and is not rolled back on
// remote failure: local state always reflects the last config this backend
// tried to set, and the error still surfaces to the caller.
func (s *Service) Push(ctx context.Context, b Bounds) (*droneconfiggorm.SpawnConfigRecord, error) {
	rec, err := s.repo.Upsert(ctx, droneconfiggorm.SpawnConfigRecord{
		XMin: b.XMin, XMax: b.XMax, YMin: b.YMin, YMax: b.YMax, ZMin: b.ZMin, ZMax: b.ZMax,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.gs.Put(ctx, remotePath, b); err != nil {
		slog.Error("drone config push failed after local write", "error", err)
		return nil, err
	}
	return rec, nil
}

// Pull fetches the authoritative config and overwrites the local copy.
// Remote failure propagates; callers needing resilience fall back to Local.
func (s *Service) Pull(ctx context.Context) (*droneconfiggorm.SpawnConfigRecord, error) {
	raw, err := s.gs.Get(ctx, remotePath)
	if err != nil {
		return nil, err
	}
	var b Bounds
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return s.repo.Upsert(ctx, droneconfiggorm.SpawnConfigRecord{
		XMin: b.XMin, XMax: b.XMax, YMin: b.YMin, YMax: b.YMax, ZMin: b.ZMin, ZMax: b.ZMax,
	})
}

// Local returns the locally stored config without touching the game server,
// creating the default record on first read.
func (s *Service) Local(ctx context.Context) (*droneconfiggorm.SpawnConfigRecord, error) {
	return s.repo.Get(ctx)
}
