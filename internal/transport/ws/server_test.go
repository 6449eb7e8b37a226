package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"hydrovox/internal/protocol"
	"hydrovox/internal/sim/catalogs"
	"hydrovox/internal/sim/fluid"
	"hydrovox/internal/sim/world"
)

const testBlocksJSON = `[
  {"id": "AIR"},
  {"id": "WATER", "fluid": true},
  {"id": "STONE", "solid": true},
  {"id": "DIRT", "solid": true},
  {"id": "GRASS", "solid": true},
  {"id": "SAND", "solid": true},
  {"id": "REED", "fragile": true, "drops_item": "REED"}
]`

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "blocks.json"), []byte(testBlocksJSON), 0o644); err != nil {
		t.Fatalf("write blocks.json: %v", err)
	}
	cats, err := catalogs.Load(dir)
	if err != nil {
		t.Fatalf("catalogs.Load: %v", err)
	}
	logger := log.New(os.Stderr, "", 0)
	w, err := world.New(world.WorldConfig{ID: "ws-test", Seed: 7}, cats, logger)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHandshakeAndFrames(t *testing.T) {
	w := newTestWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	srv := httptest.NewServer(NewServer(w, nil).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		ObserverName:    "test",
	}
	b, _ := json.Marshal(hello)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	var welcome protocol.WelcomeMsg
	if err := json.Unmarshal(readMessage(t, conn), &welcome); err != nil {
		t.Fatalf("decode welcome: %v", err)
	}
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("welcome type = %q", welcome.Type)
	}
	if welcome.SessionID == "" || welcome.WorldID != "ws-test" {
		t.Fatalf("welcome = %+v", welcome)
	}
	if welcome.WorldParams.TickRateHz <= 0 || welcome.WorldParams.Height <= 0 {
		t.Fatalf("world params = %+v", welcome.WorldParams)
	}
	if welcome.Catalogs.BlockPalette.Digest == "" || welcome.Catalogs.BlockPalette.Count != 7 {
		t.Fatalf("catalog digests = %+v", welcome.Catalogs)
	}

	var frame protocol.FrameMsg
	if err := json.Unmarshal(readMessage(t, conn), &frame); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if frame.Type != protocol.TypeFrame {
		t.Fatalf("frame type = %q", frame.Type)
	}
}

func TestActReachesWorld(t *testing.T) {
	w := newTestWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	srv := httptest.NewServer(NewServer(w, nil).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	hello, _ := json.Marshal(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
	})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}
	readMessage(t, conn) // WELCOME

	act, _ := json.Marshal(protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Action:          protocol.ActSetBlock,
		Pos:             [3]int{3, 40, 3},
		Block:           "STONE",
	})
	if err := conn.WriteMessage(websocket.TextMessage, act); err != nil {
		t.Fatalf("write act: %v", err)
	}

	// Let a few ticks pass so the action is applied, then stop the loop
	// before inspecting world state.
	start := w.Tick()
	deadline := time.Now().Add(5 * time.Second)
	for w.Tick() < start+3 {
		if time.Now().After(deadline) {
			t.Fatalf("ticks never advanced")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	if got := w.BlockName(w.BlockAt(fluid.Pos{X: 3, Y: 40, Z: 3})); got != "STONE" {
		t.Fatalf("block at target = %q, want STONE", got)
	}
}

func TestHandshakeRejectsBadVersion(t *testing.T) {
	w := newTestWorld(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	srv := httptest.NewServer(NewServer(w, nil).Handler())
	defer srv.Close()

	conn := dial(t, srv)
	hello, _ := json.Marshal(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: "0.0",
	})
	if err := conn.WriteMessage(websocket.TextMessage, hello); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close, got message")
	}
}
