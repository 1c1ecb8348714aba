package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openmapgames/mergewalk/game/engine"
	"github.com/openmapgames/mergewalk/game/service"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.sessions == nil {
		t.Error("Hub sessions map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.feeds == nil {
		t.Error("Hub feeds map is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, engine.WebSocketBufSize),
	}

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if len(hub.sessions["test-session"]) != 1 {
		t.Errorf("Expected 1 client in session, got %d", len(hub.sessions["test-session"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub()

	client := &Client{
		hub:       hub,
		sessionID: "test-session",
		send:      make(chan []byte, engine.WebSocketBufSize),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.sessions["test-session"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}
}

func TestHubMultipleClientsInSession(t *testing.T) {
	hub := NewHub()
	sessionID := "multi-client-session"

	client1 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, engine.WebSocketBufSize)}
	client2 := &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, engine.WebSocketBufSize)}

	hub.registerClient(client1)
	hub.registerClient(client2)

	if len(hub.sessions[sessionID]) != 2 {
		t.Errorf("Expected 2 clients in session, got %d", len(hub.sessions[sessionID]))
	}

	hub.unregisterClient(client1)

	if len(hub.sessions[sessionID]) != 1 {
		t.Errorf("Expected 1 client remaining in session, got %d", len(hub.sessions[sessionID]))
	}
	if !hub.sessions[sessionID][client2] {
		t.Error("client2 should still be registered")
	}
}

func TestHubBroadcastToSession(t *testing.T) {
	hub := NewHub()
	sessionID := "broadcast-test"

	client := &Client{
		hub:       hub,
		sessionID: sessionID,
		send:      make(chan []byte, engine.WebSocketBufSize),
	}
	hub.registerClient(client)

	state := engine.NewGameState(engine.DefaultRules())
	state.Held = 4

	hub.BroadcastToSession(sessionID, state)
	hub.broadcastMessage(<-hub.broadcast)

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.SessionID != sessionID {
			t.Errorf("Expected sessionID %s, got %s", sessionID, message.SessionID)
		}
		if message.Event != "state_update" {
			t.Errorf("Expected event 'state_update', got %s", message.Event)
		}
		if message.GameState.Held != 4 {
			t.Error("GameState not correctly transmitted")
		}

	case <-time.After(100 * time.Millisecond):
		t.Error("No message received within timeout")
	}
}

func TestHubNotify(t *testing.T) {
	hub := NewHub()

	hub.Notify("event-test", service.GameEvent{Type: "merge", Message: "Merged into a 4 token"})

	message := <-hub.broadcast
	if message.SessionID != "event-test" {
		t.Errorf("Expected sessionID 'event-test', got %s", message.SessionID)
	}
	if message.Event != "merge" {
		t.Errorf("Expected event 'merge', got %s", message.Event)
	}
}

func TestSessionFeed_RoundTrip(t *testing.T) {
	hub := NewHub()
	feed := hub.Feed("feed-test")

	var gotLat, gotLng float64
	var gotReason string
	feed.Subscribe(
		func(lat, lng float64) { gotLat, gotLng = lat, lng },
		func(reason string) { gotReason = reason },
	)

	sf := hub.sessionFeed("feed-test")
	sf.Push(51.5074, -0.1278)
	if gotLat != 51.5074 || gotLng != -0.1278 {
		t.Errorf("fix = (%g, %g), want (51.5074, -0.1278)", gotLat, gotLng)
	}

	sf.Fail("signal lost")
	if gotReason != "signal lost" {
		t.Errorf("reason = %q, want 'signal lost'", gotReason)
	}

	// Same session ID always yields the same feed.
	if hub.sessionFeed("feed-test") != sf {
		t.Error("sessionFeed should be stable per session")
	}

	feed.Unsubscribe()
	sf.Push(1, 1)
	if gotLat != 51.5074 {
		t.Error("no fix should be delivered after Unsubscribe")
	}
}

func wsDial(t *testing.T, hub *Hub, sessionID string) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("sessionId"))
	}))

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?sessionId=" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func TestWebSocketUpgradeAndCleanup(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	conn, cleanup := wsDial(t, hub, "ws-test")
	defer cleanup()

	time.Sleep(50 * time.Millisecond)

	hub.BroadcastToSession("ws-test", engine.NewGameState(engine.DefaultRules()))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read WebSocket message: %v", err)
	}

	var message Message
	if err := json.Unmarshal(data, &message); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if message.SessionID != "ws-test" || message.GameState == nil {
		t.Errorf("unexpected message: %+v", message)
	}
}

func TestWebSocketPositionFrameReachesFeed(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	fixes := make(chan [2]float64, 1)
	hub.Feed("gps-test").Subscribe(
		func(lat, lng float64) { fixes <- [2]float64{lat, lng} },
		func(string) {},
	)

	conn, cleanup := wsDial(t, hub, "gps-test")
	defer cleanup()

	frame := `{"type":"position","lat":51.5074,"lng":-0.1278}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}

	select {
	case fix := <-fixes:
		if fix[0] != 51.5074 || fix[1] != -0.1278 {
			t.Errorf("fix = %v, want [51.5074 -0.1278]", fix)
		}
	case <-time.After(time.Second):
		t.Error("position frame never reached the feed")
	}
}
