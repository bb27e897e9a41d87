package httpapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/browsion/browsion-core/internal/events"
)

const (
	subscriberChannelCapacity = 100
	heartbeatInterval         = 30 * time.Second
	staleConnectionTimeout    = 35 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // loopback-only service, no browser CORS exposure
}

// subscriber is one open /api/ws connection.
type subscriber struct {
	conn       *websocket.Conn
	send       chan *events.Event
	lastPongAt time.Time
	mu         sync.Mutex
}

// Hub fans out events to every connected WebSocket subscriber, dropping
// slow ones rather than letting a stuck client back-pressure the whole
// service.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*subscriber]struct{}
}

// NewHub builds an empty Hub.
func NewHub() *Hub {
	return &Hub{subscribers: make(map[*subscriber]struct{})}
}

// Broadcast sends ev to every subscriber's buffered channel; a subscriber
// whose channel is already full is dropped rather than blocked on.
func (h *Hub) Broadcast(ev *events.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		select {
		case sub.send <- ev:
		default:
			go h.drop(sub)
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	if _, ok := h.subscribers[sub]; ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
	h.mu.Unlock()
	sub.conn.Close()
}

// Run emits a heartbeat every heartbeatInterval and closes subscribers that
// have gone quiet for longer than staleConnectionTimeout.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.Broadcast(events.NewHeartbeatEvent())
			h.sweepStale()
		}
	}
}

func (h *Hub) sweepStale() {
	h.mu.Lock()
	var stale, live []*subscriber
	for sub := range h.subscribers {
		sub.mu.Lock()
		quiet := time.Since(sub.lastPongAt)
		sub.mu.Unlock()
		if quiet > staleConnectionTimeout {
			stale = append(stale, sub)
		} else {
			live = append(live, sub)
		}
	}
	h.mu.Unlock()
	for _, sub := range stale {
		h.drop(sub)
	}
	// Ping the rest; their pong handlers refresh lastPongAt before the next sweep.
	for _, sub := range live {
		_ = sub.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		close(sub.send)
		sub.conn.Close()
		delete(h.subscribers, sub)
	}
}

// serveWS upgrades the request and pumps broadcasts to the new connection
// until it errors out or the hub drops it for being too slow or too quiet.
func (h *Hub) serveWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	sub := &subscriber{conn: conn, send: make(chan *events.Event, subscriberChannelCapacity), lastPongAt: time.Now()}
	conn.SetPongHandler(func(string) error {
		sub.mu.Lock()
		sub.lastPongAt = time.Now()
		sub.mu.Unlock()
		return nil
	})

	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()

	go h.readPump(sub)
	h.writePump(sub)
}

// readPump discards inbound messages (this is a publish-only feed) but
// must keep reading so gorilla/websocket processes control frames (pong)
// and notices the connection closing.
func (h *Hub) readPump(sub *subscriber) {
	defer h.drop(sub)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sub *subscriber) {
	for ev := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := sub.conn.WriteJSON(ev); err != nil {
			h.drop(sub)
			return
		}
	}
}
