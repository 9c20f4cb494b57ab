package orderControllers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/cs4218/cs4218-2520-ecom-project-cs4218-2520-team26/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	EventOrderCreated = "order.created"
	EventOrderStatus  = "order.status"

	writeWait = 10 * time.Second

	// Events queued per dashboard before it is treated as stalled and dropped.
	sendBuffer = 32
)

// Event is one message on the admin order feed.
type Event struct {
	Type  string       `json:"type"`
	Order models.Order `json:"order"`
}

// client is one dashboard. Only its writer goroutine writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans order events out to connected admin dashboards. Broadcasting
// never waits on a socket write.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		log: log,
	}
}

// GET /auth/orders/ws
func (h *Hub) Handler(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", slog.Any("err", err))
		return
	}

	cl := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go h.writePump(cl)

	// Reads only detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(cl)
}

// writePump drains the client's queue. A closed queue means the hub let go
// of the client.
func (h *Hub) writePump(cl *client) {
	defer cl.conn.Close()
	for data := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(cl)
			return
		}
	}
	cl.conn.SetWriteDeadline(time.Now().Add(time.Second))
	cl.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(cl)
}

// drop must be called with h.mu held.
func (h *Hub) drop(cl *client) {
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}

// Clients reports how many dashboards are connected.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) OrderCreated(order models.Order) {
	h.broadcast(Event{Type: EventOrderCreated, Order: order})
}

func (h *Hub) StatusChanged(order models.Order) {
	h.broadcast(Event{Type: EventOrderStatus, Order: order})
}

func (h *Hub) broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error("encode order event failed", slog.Any("err", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			h.log.Warn("dropping stalled order feed client", slog.String("remote", cl.conn.RemoteAddr().String()))
			h.drop(cl)
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		h.drop(cl)
	}
}
