package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/canvasgraph/pkg/diagram"
	"github.com/matzehuels/canvasgraph/pkg/reactive"
)

// Event is one container change as sent to stream clients. Items is the
// complete new mapping of the container.
type Event struct {
	Container string `json:"container"`
	Seq       uint64 `json:"seq"`
	Items     any    `json:"items"`
}

// keepAlive is the interval between comment frames on an idle stream.
const keepAlive = 30 * time.Second

type client struct {
	id     uint64
	events chan []byte
}

// Hub fans container changes out to server-sent event clients.
//
// It subscribes to the three containers of a store. Each change is encoded
// once and offered to every client; a client whose buffer is full misses
// the event rather than blocking the writer of the container.
type Hub struct {
	logger *log.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}
	nextID  atomic.Uint64
	seq     atomic.Uint64

	unsubscribe []func()
}

// NewHub creates a hub that follows the containers of s.
func NewHub(s *diagram.Store, logger *log.Logger) *Hub {
	h := &Hub{
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = []func(){
		follow(h, s.Nodes),
		follow(h, s.Anchors),
		follow(h, s.Edges),
	}
	return h
}

// follow subscribes h to c, skipping the immediate initial call that
// Subscribe makes.
func follow[V any](h *Hub, c *reactive.Container[V]) func() {
	var primed atomic.Bool
	return c.Subscribe(func(m map[string]V) {
		if primed.CompareAndSwap(false, true) {
			return
		}
		h.Broadcast(c.Name(), m)
	})
}

// Close stops following the store. Connected clients stay open until their
// requests end.
func (h *Hub) Close() {
	for _, u := range h.unsubscribe {
		u()
	}
}

// Broadcast sends a change of the named container to every client.
func (h *Hub) Broadcast(container string, items any) {
	data, err := json.Marshal(Event{Container: container, Seq: h.seq.Add(1), Items: items})
	if err != nil {
		h.logger.Error("encode event", "container", container, "error", err)
		return
	}
	msg := []byte(fmt.Sprintf("event: change\ndata: %s\n\n", data))

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.events <- msg:
		default:
			h.logger.Warn("stream client is slow, dropping event", "client", c.id, "container", container)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add() *client {
	c := &client{id: h.nextID.Add(1), events: make(chan []byte, 64)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("stream client connected", "client", c.id, "total", n)
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("stream client disconnected", "client", c.id, "total", n)
}

// ServeHTTP streams change events until the request is canceled.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	c := h.add()
	defer h.remove(c)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.events:
			if _, err := w.Write(msg); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
