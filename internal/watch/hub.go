// Package watch pushes shared-folder change notifications to connected
// browsers over WebSocket.
package watch

import (
	"net/http"
	"sync"
	"time"

	"github.com/Its-donkey/sharebox/internal/ui/model"
	"github.com/Its-donkey/sharebox/logging"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	clientBuf  = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The endpoint sits behind the session check.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans WatchEvents out to every connected client.
type Hub struct {
	logger *logging.Logger

	mu      sync.Mutex
	clients map[chan model.WatchEvent]struct{}
	closed  bool
}

// NewHub returns an empty Hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{logger: logger, clients: make(map[chan model.WatchEvent]struct{})}
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener is done.
func (h *Hub) Subscribe() (<-chan model.WatchEvent, func()) {
	ch := make(chan model.WatchEvent, clientBuf)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	h.clients[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.clients[ch]; ok {
				delete(h.clients, ch)
				close(ch)
			}
		})
	}
}

// Clients reports the number of subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast delivers evt to every subscriber. Slow subscribers that already
// have a full buffer miss the event; they will refresh on the next one.
func (h *Hub) Broadcast(evt model.WatchEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- evt:
		default:
		}
	}
}

// NotifyFilesChanged broadcasts a files_changed event.
func (h *Hub) NotifyFilesChanged(name string) {
	h.Broadcast(model.WatchEvent{Type: model.WatchFilesChanged, Name: name})
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}

// ServeHTTP upgrades the request and streams events until either side hangs up.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("watch", "websocket upgrade failed", map[string]any{
			"error":      err.Error(),
			"request_id": logging.RequestIDFromContext(r.Context()),
		})
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go h.readLoop(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case evt, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				h.logger.Debug("watch", "websocket write failed", map[string]any{"error": err.Error()})
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains client frames so pongs and close frames are processed.
func (h *Hub) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("watch", "websocket read failed", map[string]any{"error": err.Error()})
			}
			return
		}
	}
}
