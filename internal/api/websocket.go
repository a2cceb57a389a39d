// internal/api/websocket.go
package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Corphon/MagicStudio/internal/models"
	"github.com/Corphon/MagicStudio/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// hubClient is one browser tab following attempt progress
type hubClient struct {
	conn      *websocket.Conn
	send      chan []byte
	closed    int32 // 0=open, 1=closed
	createdAt time.Time
}

func (c *hubClient) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.conn.Close()
	}
}

func (c *hubClient) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// AttemptHub fans attempt state transitions out to every connected
// creation view. It implements services.AttemptObserver.
type AttemptHub struct {
	clients    map[*hubClient]struct{}
	broadcast  chan []byte
	register   chan *hubClient
	unregister chan *hubClient
	done       chan struct{}
	stopOnce   sync.Once
	mutex      sync.RWMutex
	logger     *utils.Logger
}

// NewAttemptHub starts the hub loop
func NewAttemptHub() *AttemptHub {
	h := &AttemptHub{
		clients:    make(map[*hubClient]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *hubClient, 16),
		unregister: make(chan *hubClient, 16),
		done:       make(chan struct{}),
		logger:     utils.GetLogger(),
	}
	go h.run()
	return h
}

func (h *AttemptHub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			h.mutex.Unlock()

		case client := <-h.unregister:
			h.mutex.Lock()
			delete(h.clients, client)
			h.mutex.Unlock()
			client.close()

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.done:
			h.shutdown()
			return
		}
	}
}

func (h *AttemptHub) broadcastMessage(message []byte) {
	h.mutex.RLock()
	clients := make([]*hubClient, 0, len(h.clients))
	for client := range h.clients {
		if !client.isClosed() {
			clients = append(clients, client)
		}
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			// slow consumer
			h.logger.Warn("attempt hub client queue full, disconnecting", nil)
			client.close()
		}
	}
}

func (h *AttemptHub) shutdown() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		client.close()
	}
	h.clients = make(map[*hubClient]struct{})
}

// Close disconnects every client and stops the hub loop
func (h *AttemptHub) Close() {
	h.stopOnce.Do(func() { close(h.done) })
}

// OnAttemptEvent publishes one state transition. It never blocks the pipeline.
func (h *AttemptHub) OnAttemptEvent(event models.AttemptEvent) {
	message, err := json.Marshal(map[string]interface{}{
		"type":       "attempt_state",
		"attempt_id": event.AttemptID,
		"state":      event.State,
		"terminal":   event.State.Terminal(),
		"message":    event.Message,
		"timestamp":  time.Now().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Error("failed to encode attempt event", map[string]interface{}{"error": err.Error()})
		return
	}

	select {
	case h.broadcast <- message:
	case <-h.done:
	default:
		h.logger.Warn("attempt hub broadcast queue full, event dropped", map[string]interface{}{
			"attempt_id": event.AttemptID,
			"state":      string(event.State),
		})
	}
}

// ClientCount is the number of connected clients
func (h *AttemptHub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams attempt events until the client leaves
func (h *AttemptHub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	client := &hubClient{
		conn:      conn,
		send:      make(chan []byte, 64),
		createdAt: time.Now(),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(client)
	h.readPump(client)
}

// readPump discards client messages and detects disconnects
func (h *AttemptHub) readPump(client *hubClient) {
	defer func() {
		select {
		case h.unregister <- client:
		case <-h.done:
			client.close()
		}
	}()

	client.conn.SetReadLimit(512)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("websocket read error", map[string]interface{}{"error": err.Error()})
			}
			return
		}
	}
}

func (h *AttemptHub) writePump(client *hubClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.close()
	}()

	for {
		select {
		case message := <-client.send:
			if client.isClosed() {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			if client.isClosed() {
				return
			}
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-h.done:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
