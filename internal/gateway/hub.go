// Package gateway fans emitted signals out to WebSocket subscribers. It
// bridges the Redis signal channels published by the scanner to connected
// clients, keeping a replay buffer so a reconnecting client can backfill
// signals it missed.
package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
)

const signalPattern = "signals:*"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The gateway serves trusted dashboards; origin policy is the deployment's
	// reverse proxy's job.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub manages WebSocket clients and the Redis subscription feeding them.
type Hub struct {
	rdb *goredis.Client

	mu      sync.RWMutex
	clients map[*Client]bool
	seq     int64

	replay *ReplayBuffer
}

// NewHub creates a Hub reading signals from the given Redis client.
func NewHub(rdb *goredis.Client, replayCapacity int) *Hub {
	return &Hub{
		rdb:     rdb,
		clients: make(map[*Client]bool),
		replay:  NewReplayBuffer(replayCapacity),
	}
}

// Run subscribes to the signal channels and fans messages out to connected
// clients. Blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	pubsub := h.rdb.PSubscribe(ctx, signalPattern)
	defer pubsub.Close()

	log.Printf("[gateway] subscribed to %s", signalPattern)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast(msg.Channel, []byte(msg.Payload))
		}
	}
}

// Broadcast wraps a signal payload in an envelope and sends it to every
// connected client. The envelope is hand-crafted JSON — this is the hot path
// and the payload is already encoded.
func (h *Hub) Broadcast(channel string, data []byte) {
	now := time.Now().UTC()

	h.mu.Lock()
	h.seq++
	seq := h.seq
	h.mu.Unlock()

	buf := make([]byte, 0, len(channel)+len(data)+96)
	buf = append(buf, `{"channel":"`...)
	buf = append(buf, channel...)
	buf = append(buf, `","data":`...)
	buf = append(buf, data...)
	buf = append(buf, `,"ts":"`...)
	buf = now.AppendFormat(buf, time.RFC3339Nano)
	buf = append(buf, `","seq":`...)
	buf = strconv.AppendInt(buf, seq, 10)
	buf = append(buf, '}')

	h.replay.Push(seq, buf)

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- buf:
		default:
			// slow client, drop rather than stall the fan-out
		}
	}
	h.mu.RUnlock()
}

// ServeWS upgrades an HTTP request to a WebSocket client. A since_seq query
// parameter backfills envelopes the client missed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[gateway] upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, 64),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[gateway] ws client connected (%d total)", count)

	if raw := r.URL.Query().Get("since_seq"); raw != "" {
		if sinceSeq, err := strconv.ParseInt(raw, 10, 64); err == nil {
			go client.backfill(sinceSeq)
		}
	}

	go client.writePump()
	go client.readPump()
}

// RecentHandler serves the most recent buffered signal envelopes as a JSON
// array. An optional limit query parameter caps the count (default 50).
func (h *Hub) RecentHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries := h.replay.Last(limit)
	out := make([]json.RawMessage, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// RemoveClient unregisters a client and closes its send channel.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Seq returns the current broadcast sequence number.
func (h *Hub) Seq() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}
