package chain

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Writer appends hash-chained audit events to a JSONL file. Each event
// carries the hash of its predecessor, so truncation or edits in the middle
// of the log are detectable via Verify.
type Writer struct {
	mu   sync.Mutex
	f    *os.File
	prev []byte
}

func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &Writer{f: f, prev: make([]byte, 32)}, nil
}

func (w *Writer) Close() error { return w.f.Close() }

// Event records one admin action: kind is the action (login, player_update,
// drone_config_push, ...), actor the admin username, target the affected id.
type Event struct {
	Time   time.Time         `json:"time"`
	Kind   string            `json:"kind"`
	Actor  string            `json:"actor"`
	Target string            `json:"target"`
	Meta   map[string]string `json:"meta"`
	Prev   string            `json:"prev"`
	Hash   string            `json:"hash"`
}

func (w *Writer) Log(kind, actor, target string, meta map[string]string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ev := Event{Time: time.Now().UTC(), Kind: kind, Actor: actor, Target: target, Meta: meta, Prev: hex.EncodeToString(w.prev)}
	b, _ := json.Marshal(ev)
	h := sha256.Sum256(append(w.prev, b...))
	ev.Hash = hex.EncodeToString(h[:])
	b, _ = json.Marshal(ev)
	if _, err := w.f.Write(append(b, '\n')); err != nil {
		return err
	}
	copy(w.prev, h[:])
	return nil
}

// Verify re-walks the chain in the given file and returns the number of
// valid events, or an error at the first broken link.
func Verify(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	prev := make([]byte, 32)
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Bytes()
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return n, fmt.Errorf("event %d: %w", n, err)
		}
		if ev.Prev != hex.EncodeToString(prev) {
			return n, fmt.Errorf("event %d: prev hash mismatch", n)
		}
		want := ev.Hash
		ev.Hash = ""
		b, _ := json.Marshal(ev)
		h := sha256.Sum256(append(prev, b...))
		if hex.EncodeToString(h[:]) != want {
			return n, fmt.Errorf("event %d: hash mismatch", n)
		}
		copy(prev, h[:])
		n++
	}
	return n, sc.Err()
}
