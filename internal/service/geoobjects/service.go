// Package geoobjects coordinates geo-object assignment with the game
// server. The game server owns the authoritative assignment state; this
// service only validates, forwards, and relays the answer.
package geoobjects

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// GameServerAPI is the slice of the game-server client this service needs.
type GameServerAPI interface {
	Post(ctx context.Context, path string, body any) (json.RawMessage, error)
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

type AssignRequest struct {
	PlayerID string   `json:"playerId"`
	Location Location `json:"location"`
}

// ValidationError is a caller mistake; the HTTP layer maps it to 400.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Wire contract toward the game server. The short lat/lng/alt keys are what
// the live server expects; the long-form keys stay on the CMS-facing API.
type assignPayload struct {
	PlayerID string   `json:"playerId"`
	Position position `json:"position"`
}

type position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Alt float64 `json:"alt"`
}

type Service struct{ gs GameServerAPI }

func NewService(gs GameServerAPI) *Service { return &Service{gs: gs} }

// Assign forwards the assignment to the game server and returns its
// response body verbatim. No local state is touched; client errors
// propagate unchanged for the HTTP layer to map.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (json.RawMessage, error) {
	if strings.TrimSpace(req.PlayerID) == "" {
		return nil, &ValidationError{Msg: "playerId is required"}
	}
	for name, v := range map[string]float64{
		"latitude":  req.Location.Latitude,
		"longitude": req.Location.Longitude,
		"altitude":  req.Location.Altitude,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ValidationError{Msg: fmt.Sprintf("location.%s must be a finite number", name)}
		}
	}
	slog.Info("assigning geo object", "player_id", req.PlayerID,
		"lat", req.Location.Latitude, "lng", req.Location.Longitude, "alt", req.Location.Altitude)
	return s.gs.Post(ctx, "/geo-objects/assign", assignPayload{
		PlayerID: req.PlayerID,
		Position: position{Lat: req.Location.Latitude, Lng: req.Location.Longitude, Alt: req.Location.Altitude},
	})
}
