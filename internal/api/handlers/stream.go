package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/themeradar/internal/contracts"
	"github.com/wonny/themeradar/pkg/logger"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamMessage is the frame sent to run subscribers
type StreamMessage struct {
	Type    string               `json:"type"`
	Payload contracts.StageEvent `json:"payload"`
}

// sendBuffer is the number of frames queued per client before it is dropped
const sendBuffer = 32

// streamClient owns one connection; only its writer goroutine writes to conn
type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans pipeline stage events out to websocket subscribers.
// Publish never blocks on a subscriber: each client has its own queue and writer.
// ⭐ SSOT: 실행 이벤트 브로드캐스트는 여기서만
type Hub struct {
	logger  *logger.Logger
	mu      sync.RWMutex
	clients map[*streamClient]struct{}
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger:  log,
		clients: make(map[*streamClient]struct{}),
	}
}

// Clients returns the current subscriber count
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish implements contracts.StageListener
func (h *Hub) Publish(event contracts.StageEvent) {
	data, err := json.Marshal(StreamMessage{Type: "stage", Payload: event})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal stage event")
		return
	}
	h.broadcast(data)
}

// broadcast queues data for every client; a client with a full queue is disconnected
func (h *Hub) broadcast(data []byte) {
	var slow []*streamClient

	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		if h.remove(c) {
			h.logger.Warn("Stream client too slow, disconnecting")
		}
	}
}

func (h *Hub) register(c *streamClient) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	return len(h.clients)
}

// remove unregisters c and closes its queue once; reports whether c was registered
func (h *Hub) remove(c *streamClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	close(c.send)
	return true
}

// ServeWS upgrades the connection and keeps it registered until the client leaves
// GET /ws/runs
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade websocket connection")
		return
	}

	c := &streamClient{conn: conn, send: make(chan []byte, sendBuffer)}
	count := h.register(c)
	h.logger.WithField("clients", count).Debug("Stream client connected")

	go h.writeLoop(c)

	defer func() {
		h.remove(c)
		h.logger.WithField("clients", h.Clients()).Debug("Stream client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Warn("Stream read error")
			}
			return
		}
	}
}

// writeLoop drains the client queue and sends pings; it closes the connection on exit
func (h *Hub) writeLoop(c *streamClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.WithError(err).Warn("Failed to send to stream client")
				h.remove(c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.remove(c)
				return
			}
		}
	}
}
