// Package stream broadcasts committed ledger events to WebSocket
// subscribers. The hub is an engine.EventSink: publishing never blocks the
// instruction path, a subscriber that cannot keep up loses events.
package stream

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"duel-crowd-bets/internal/domain"
	"duel-crowd-bets/internal/observability"
)

// HubConfig configures WebSocket hub behavior.
type HubConfig struct {
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// PongTimeout is how long to wait for a pong before dropping the client.
	PongTimeout time.Duration
	// SendBuffer is the per-subscriber event buffer.
	SendBuffer int
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
		PongTimeout:  60 * time.Second,
		SendBuffer:   256,
	}
}

// Hub fans committed ledger events out to connected subscribers.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader

	subs   map[*subscriber]struct{}
	subsMu sync.Mutex

	done     chan struct{}
	closedMu sync.Mutex
	closed   bool
	wg       sync.WaitGroup
}

type subscriber struct {
	conn *websocket.Conn
	send chan domain.LedgerEvent
}

// NewHub creates a hub ready to accept connections.
func NewHub(config *HubConfig) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Read-only event feed; all origins may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
		done: make(chan struct{}),
	}
}

// Publish implements engine.EventSink. Slow subscribers are skipped, not
// waited on.
func (h *Hub) Publish(_ context.Context, e domain.LedgerEvent) {
	observability.RecordEventPublished(string(e.Kind))

	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	for sub := range h.subs {
		select {
		case sub.send <- e:
		default:
			observability.DefaultMetrics.StreamDropped.Inc()
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client
// disconnects or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan domain.LedgerEvent, h.config.SendBuffer),
	}

	h.subsMu.Lock()
	if h.isClosed() {
		h.subsMu.Unlock()
		conn.Close()
		return
	}
	h.subs[sub] = struct{}{}
	h.subsMu.Unlock()
	observability.DefaultMetrics.StreamSubscribers.Inc()

	h.wg.Add(2)
	go h.writeLoop(sub)
	go h.readLoop(sub)
}

// Close disconnects all subscribers and stops accepting new ones.
func (h *Hub) Close() error {
	h.closedMu.Lock()
	if h.closed {
		h.closedMu.Unlock()
		return nil
	}
	h.closed = true
	h.closedMu.Unlock()

	close(h.done)

	h.subsMu.Lock()
	for sub := range h.subs {
		sub.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		sub.conn.Close()
	}
	h.subsMu.Unlock()

	h.wg.Wait()
	return nil
}

// Subscribers reports the current connection count.
func (h *Hub) Subscribers() int {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	return len(h.subs)
}

func (h *Hub) isClosed() bool {
	h.closedMu.Lock()
	defer h.closedMu.Unlock()
	return h.closed
}

func (h *Hub) remove(sub *subscriber) {
	h.subsMu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
	}
	h.subsMu.Unlock()
	if ok {
		observability.DefaultMetrics.StreamSubscribers.Dec()
		sub.conn.Close()
	}
}

// writeLoop pushes events and ping frames to one subscriber.
func (h *Hub) writeLoop(sub *subscriber) {
	defer h.wg.Done()
	defer h.remove(sub)

	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case e := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := sub.conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards inbound frames; it exists to process control messages
// and to notice the disconnect.
func (h *Hub) readLoop(sub *subscriber) {
	defer h.wg.Done()
	defer h.remove(sub)

	sub.conn.SetReadLimit(512)
	sub.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	})

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[stream] read: %v", err)
			}
			return
		}
	}
}
