package gameserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/shootingdapp/cms/internal/config"
)

// Client performs single-attempt authenticated HTTP calls to the game
// server. Every call carries the static Service-Key plus a freshly minted
// Service-Token; retry policy, if any, belongs to the caller.
type Client struct {
	baseURL    string
	serviceKey string
	issuer     *Issuer
	http       *http.Client
}

func NewClient(cfg config.GameServer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		issuer:     NewIssuer(cfg.ServiceSecret),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Do issues one request and normalizes the outcome:
//   - 401                      -> *AuthError, regardless of body
//   - >=500 or transport error -> *UnavailableError
//   - anything else below 500  -> raw JSON body (4xx included; callers
//     inspect application-level errors themselves)
//
// Configuration gaps (base URL, service key, secret) surface before any
// network attempt.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	if c.baseURL == "" {
		return nil, &ConfigError{Missing: "game_server.base_url"}
	}
	if c.serviceKey == "" {
		return nil, &ConfigError{Missing: "game_server.service_key"}
	}
	tok, err := c.issuer.Issue()
	if err != nil {
		return nil, err
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Service-Key", c.serviceKey)
	req.Header.Set("Service-Token", tok)

	slog.Debug("game server request", "method", method, "path", path, "credential", "present")
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		slog.Error("game server unreachable", "method", method, "path", path, "error", err)
		return nil, &UnavailableError{Err: err}
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	dur := time.Since(start)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		slog.Error("game server rejected credential", "method", method, "path", path, "status", resp.StatusCode)
		return nil, &AuthError{Body: string(raw)}
	case resp.StatusCode >= 500:
		slog.Error("game server error", "method", method, "path", path, "status", resp.StatusCode, "duration", dur)
		return nil, &UnavailableError{Status: resp.StatusCode, Body: string(raw)}
	}
	slog.Info("game server response", "method", method, "path", path, "status", resp.StatusCode, "duration", dur)
	if len(raw) == 0 {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}
