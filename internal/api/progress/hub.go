package progress

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/aegis-scorer/internal/brain"
	"github.com/wonny/aegis-scorer/internal/contracts"
	"github.com/wonny/aegis-scorer/pkg/logger"
	"github.com/wonny/aegis-scorer/pkg/workerpool"
)

const (
	// Ping/Pong settings
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	clientBuffer = 64
)

// Event is one progress notification of a running batch
type Event struct {
	RunID    string               `json:"run_id"`
	Strategy string               `json:"strategy,omitempty"`
	Symbol   string               `json:"symbol,omitempty"`
	Kind     contracts.ResultKind `json:"kind,omitempty"`
	Done     int                  `json:"done"`
	Total    int                  `json:"total"`
	Finished bool                 `json:"finished,omitempty"`
}

// Hub broadcasts batch progress to websocket subscribers
// ⭐ SSOT: 진행 상황 브로드캐스트는 여기서만
//
// 참고용 채널이다. 느린 구독자의 버퍼가 차면 이벤트를 버리며 배치는 절대 기다리지 않는다.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}

	logger *logger.Logger
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub creates an empty hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		logger:  log.WithComponent("progress"),
	}
}

// Clients returns the number of connected subscribers
func (h *Hub) Clients() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends e to every subscriber without blocking
func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			// drop
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client leaves
// GET /ws/progress
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan Event, clientBuffer)}
	h.register(c)
	h.logger.WithField("clients", h.Clients()).Debug("progress subscriber connected")

	go h.readPump(c)
	h.writePump(c)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// readPump discards client messages and keeps the pong deadline fresh
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case e, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

// BatchProgress adapts the hub to a scoring batch's progress callback
func BatchProgress(h *Hub, runID, strategy string) workerpool.Progress[brain.SymbolResult] {
	if h == nil {
		return nil
	}
	return func(done, total int, r brain.SymbolResult) {
		h.Publish(Event{
			RunID:    runID,
			Strategy: strategy,
			Symbol:   r.Symbol,
			Kind:     r.Kind,
			Done:     done,
			Total:    total,
			Finished: done == total,
		})
	}
}
