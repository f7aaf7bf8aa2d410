package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"phrasebook/internal/activity"
	"phrasebook/internal/api"
	"phrasebook/internal/logging"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
	feedSendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// feedClient is one websocket subscriber.
type feedClient struct {
	conn *websocket.Conn
	user string
	send chan []byte
	once sync.Once
}

func (c *feedClient) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// hub fans activity entries out to websocket clients. Register, unregister,
// and broadcast are serialized through run.
type hub struct {
	logger     *slog.Logger
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
}

func newHub(logger *slog.Logger) *hub {
	return &hub{
		logger:     logger,
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, 64),
		clients:    make(map[*feedClient]struct{}),
	}
}

// Publish implements activity.Subscriber. It never blocks; entries are
// dropped when the broadcast buffer is full.
func (h *hub) Publish(entry activity.Entry) {
	payload, err := json.Marshal(api.FromEntry(entry))
	if err != nil {
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Debug("activity feed buffer full; dropping entry", logging.String("action", entry.Action))
	}
}

func (h *hub) run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("activity feed client connected", logging.String(logging.FieldUser, client.user))

		case client := <-h.unregister:
			h.remove(client)

		case payload := <-h.broadcast:
			h.mu.RLock()
			var slow []*feedClient
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()
			for _, client := range slow {
				h.remove(client)
			}

		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				client.close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *hub) remove(client *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.close()
	}
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// serve upgrades the request and pumps messages until either side closes.
func (h *hub) serve(ctx context.Context, w http.ResponseWriter, r *http.Request, user string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &feedClient{conn: conn, user: user, send: make(chan []byte, feedSendBuffer)}

	select {
	case h.register <- client:
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}

	go h.writePump(client)
	h.readPump(client)
	return nil
}

func (h *hub) readPump(client *feedClient) {
	defer func() {
		// The hub may already be gone during shutdown.
		select {
		case h.unregister <- client:
		case <-time.After(time.Second):
		}
		_ = client.conn.Close()
	}()
	client.conn.SetReadLimit(512)
	_ = client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writePump(client *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
