package stream

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cxd309/traction-engine/internal/consist"
	"github.com/cxd309/traction-engine/internal/engine"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		resp.Body.Close()
	})
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		t.Fatalf("decoding %q: %v", payload, err)
	}
	return msg
}

func newServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub, err := NewHub(engine.SimulationMeta{SimulationID: "live", RunTime: 60, TimeStep: 0.5}, nil)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestHubBroadcast(t *testing.T) {
	hub, srv := newServer(t)
	a, b := dial(t, srv), dial(t, srv)

	for _, conn := range []*websocket.Conn{a, b} {
		hello := read(t, conn)
		if hello.Type != TypeMeta || hello.Meta == nil || hello.Meta.SimulationID != "live" {
			t.Fatalf("unexpected greeting %+v", hello)
		}
	}
	if hub.Len() != 2 {
		t.Fatalf("expected 2 clients, got %d", hub.Len())
	}

	row := engine.SimulationLogRow{Timestamp: 1.5, Speed: 3, TotalForce: 120e3}
	if err := hub.BroadcastRow(row); err != nil {
		t.Fatal(err)
	}
	for _, conn := range []*websocket.Conn{a, b} {
		msg := read(t, conn)
		if msg.Type != TypeRow || msg.Row == nil || msg.Row.TotalForce != 120e3 {
			t.Fatalf("unexpected row %+v", msg)
		}
	}

	if err := hub.BroadcastDone(map[string]string{"A": "ON"}); err != nil {
		t.Fatal(err)
	}
	if msg := read(t, a); msg.Type != TypeDone || msg.Status["A"] != "ON" {
		t.Fatalf("unexpected done message %+v", msg)
	}
}

func TestHubControls(t *testing.T) {
	hub, srv := newServer(t)
	conn := dial(t, srv)
	read(t, conn)

	throttle := 75.0
	dir := consist.Reverse
	for _, payload := range []any{
		"not json",
		Message{Type: "chat"},
		Message{Type: TypeControl, Control: &engine.ControlEvent{Throttle: &throttle, Direction: &dir}},
	} {
		var err error
		if s, ok := payload.(string); ok {
			err = conn.WriteMessage(websocket.TextMessage, []byte(s))
		} else {
			err = conn.WriteJSON(payload)
		}
		if err != nil {
			t.Fatal(err)
		}
	}

	select {
	case c := <-hub.Controls():
		if c.Throttle == nil || *c.Throttle != 75 || c.Direction == nil || *c.Direction != consist.Reverse {
			t.Fatalf("unexpected control %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("control event not delivered")
	}
}

func TestHubClose(t *testing.T) {
	hub, srv := newServer(t)
	conn := dial(t, srv)
	read(t, conn)

	hub.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
	if hub.Len() != 0 {
		t.Fatalf("expected no clients, got %d", hub.Len())
	}
}
