package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/unxversal/pointgate/internal/model"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/stream", hub.Serve)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastsDayFinalized(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	// Subscription registration races the dial handshake.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatal("client never registered")
	}

	hub.NotifyDayFinalized(model.DayFinalizedEvent{
		User:      "0x0000000000000000000000000000000000000001",
		Day:       700,
		Week:      100,
		DayPoints: 42,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var env struct {
		Type string                  `json:"type"`
		Data model.DayFinalizedEvent `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	if env.Type != model.EventDayFinalized {
		t.Fatalf("type = %q, want %q", env.Type, model.EventDayFinalized)
	}
	if env.Data.DayPoints != 42 || env.Data.Week != 100 {
		t.Fatalf("payload mismatch: %+v", env.Data)
	}
}

func TestHubDropsDisconnectedClients(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 0 {
		t.Fatal("closed client still registered")
	}

	// Broadcasting with no subscribers must not block or panic.
	hub.NotifyTierChange(model.TierChangeEvent{User: "0x01", NewTier: 1})
}
