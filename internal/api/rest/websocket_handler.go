package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Event is one live update pushed to connected dashboards: a completion,
// uncompletion, check-in or check-out.
type Event struct {
	Type      string    `json:"type"`
	ItemID    uuid.UUID `json:"item_id"`
	MarshalID uuid.UUID `json:"marshal_id"`
	Linked    bool      `json:"linked"`
	At        time.Time `json:"at"`
}

// WebSocketHub fans events out to the sockets watching each event. Slow
// clients are dropped rather than allowed to block the broadcast.
type WebSocketHub struct {
	mu      sync.RWMutex
	rooms   map[uuid.UUID]map[*wsClient]struct{}
	logger  *slog.Logger
	upgrade websocket.Upgrader
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewWebSocketHub creates the hub.
func NewWebSocketHub(logger *slog.Logger) *WebSocketHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHub{
		rooms:  make(map[uuid.UUID]map[*wsClient]struct{}),
		logger: logger,
		upgrade: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast pushes an event to every socket watching the given event.
func (h *WebSocketHub) Broadcast(eventID uuid.UUID, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := h.rooms[eventID]
	var stale []*wsClient
	for c := range clients {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range stale {
		h.remove(eventID, c)
	}
}

// ServeHTTP upgrades the connection and streams events for the caller's
// event until the client disconnects.
func (h *WebSocketHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	eventID, ok := EventIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing authentication context", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrade.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, 32)}
	h.add(eventID, client)

	go h.writeLoop(eventID, client)
	h.readLoop(eventID, client)
}

func (h *WebSocketHub) add(eventID uuid.UUID, c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[eventID] == nil {
		h.rooms[eventID] = make(map[*wsClient]struct{})
	}
	h.rooms[eventID][c] = struct{}{}
}

func (h *WebSocketHub) remove(eventID uuid.UUID, c *wsClient) {
	h.mu.Lock()
	if clients, ok := h.rooms[eventID]; ok {
		if _, present := clients[c]; present {
			delete(clients, c)
			close(c.send)
			if len(clients) == 0 {
				delete(h.rooms, eventID)
			}
		}
	}
	h.mu.Unlock()
}

func (h *WebSocketHub) writeLoop(eventID uuid.UUID, c *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHub) readLoop(eventID uuid.UUID, c *wsClient) {
	defer h.remove(eventID, c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
