// Package stream publishes a running simulation to websocket clients and
// collects live cab controls from them.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"

	"github.com/cxd309/traction-engine/internal/engine"
	"github.com/cxd309/traction-engine/internal/train"
)

const writeWait = 5 * time.Second

// Message types.
const (
	TypeMeta    = "meta"
	TypeRow     = "row"
	TypeDone    = "done"
	TypeControl = "control"
)

// Message is the envelope of everything sent over the socket.
type Message struct {
	Type    string                   `json:"type"`
	Meta    *engine.SimulationMeta   `json:"meta,omitempty"`
	Row     *engine.SimulationLogRow `json:"row,omitempty"`
	Status  map[train.CarID]string   `json:"status,omitempty"`
	Control *engine.ControlEvent     `json:"control,omitempty"`
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans simulation messages out to every connected client.
type Hub struct {
	mu       sync.Mutex
	subs     map[uint64]*subscriber
	nextID   uint64
	hello    []byte
	upgrader websocket.Upgrader
	controls chan engine.ControlEvent
	logger   log.Logger
}

// NewHub returns a hub that greets new clients with meta.
func NewHub(meta engine.SimulationMeta, logger log.Logger) (*Hub, error) {
	hello, err := json.Marshal(Message{Type: TypeMeta, Meta: &meta})
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Hub{
		subs:  make(map[uint64]*subscriber),
		hello: hello,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		controls: make(chan engine.ControlEvent, 16),
		logger:   logger,
	}, nil
}

// Controls delivers the control events sent by clients.
func (h *Hub) Controls() <-chan engine.ControlEvent { return h.controls }

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// ServeHTTP upgrades the request and serves the client until it hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(h.logger).Log("msg", "upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	id, sub := h.subscribe(conn)
	logger := log.With(h.logger, "client", id)
	level.Info(logger).Log("msg", "client connected", "remote", r.RemoteAddr)
	defer func() {
		h.disconnect(id)
		level.Info(logger).Log("msg", "client disconnected")
	}()

	if err := sub.write(h.hello); err != nil {
		return
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			level.Warn(logger).Log("msg", "discarding malformed message", "err", err)
			continue
		}
		if msg.Type != TypeControl || msg.Control == nil {
			level.Warn(logger).Log("msg", "unknown message", "type", msg.Type)
			continue
		}
		select {
		case h.controls <- *msg.Control:
		default:
			level.Warn(logger).Log("msg", "control queue full, dropping event")
		}
	}
}

func (h *Hub) subscribe(conn *websocket.Conn) (uint64, *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	sub := &subscriber{conn: conn}
	h.subs[h.nextID] = sub
	return h.nextID, sub
}

func (h *Hub) disconnect(id uint64) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// Broadcast sends msg to every client. Clients that fail to take it are
// dropped.
func (h *Hub) Broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.Lock()
	subs := make(map[uint64]*subscriber, len(h.subs))
	for id, sub := range h.subs {
		subs[id] = sub
	}
	h.mu.Unlock()

	for id, sub := range subs {
		if err := sub.write(data); err != nil {
			level.Warn(h.logger).Log("msg", "send failed", "client", id, "err", err)
			h.disconnect(id)
		}
	}
	return nil
}

// BroadcastRow publishes one simulation step.
func (h *Hub) BroadcastRow(row engine.SimulationLogRow) error {
	return h.Broadcast(Message{Type: TypeRow, Row: &row})
}

// BroadcastDone announces the end of the run with the final cab status.
func (h *Hub) BroadcastDone(status map[train.CarID]string) error {
	return h.Broadcast(Message{Type: TypeDone, Status: status})
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[uint64]*subscriber)
	h.mu.Unlock()
	for _, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		sub.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		sub.mu.Unlock()
		sub.conn.Close()
	}
}
