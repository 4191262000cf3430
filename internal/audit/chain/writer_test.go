package chain

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestChainVerify(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	events := []struct{ kind, actor, target string }{
		{"login", "admin", "auth"},
		{"player_update", "admin", "player-1"},
		{"drone_config_push", "admin", "drone-config"},
	}
	for _, ev := range events {
		if err := w.Log(ev.kind, ev.actor, ev.target, map[string]string{"ip": "127.0.0.1"}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	n, err := Verify(path)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if n != len(events) {
		t.Fatalf("verified %d events, want %d", n, len(events))
	}
}

func TestChainDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	w, err := NewWriter(path)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, kind := range []string{"login", "player_delete", "login"} {
		if err := w.Log(kind, "admin", "x", nil); err != nil {
			t.Fatalf("log: %v", err)
		}
	}
	w.Close()

	// flip the kind inside the middle event
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	tampered := bytes.Replace(b, []byte(`"player_delete"`), []byte(`"player_create"`), 1)
	if bytes.Equal(tampered, b) {
		t.Fatal("tamper target not found")
	}
	if err := os.WriteFile(path, tampered, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	n, err := Verify(path)
	if err == nil {
		t.Fatal("expected verification failure")
	}
	if n != 1 {
		t.Fatalf("verified %d events before break, want 1", n)
	}
}
