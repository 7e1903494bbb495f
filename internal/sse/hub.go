package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veristudy/veristudy-backend/internal/platform/logger"
)

type Event string

const (
	EventJobProgress Event = "JobProgress"
	EventJobFailed   Event = "JobFailed"
	EventJobDone     Event = "JobDone"
)

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}

type Client struct {
	ID       uuid.UUID
	Outbound chan Message
	done     chan struct{}
	doneOnce sync.Once
}

// Hub fans job events out to subscribed observers. Channels are job ids.
type Hub struct {
	mu            sync.RWMutex
	log           *logger.Logger
	subscriptions map[string]map[*Client]bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		log:           log.With("component", "SSEHub"),
		subscriptions: make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Subscribe(channel string) *Client {
	client := &Client{
		ID:       uuid.New(),
		Outbound: make(chan Message, 16),
		done:     make(chan struct{}),
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return client
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscriptions[channel] == nil {
		h.subscriptions[channel] = make(map[*Client]bool)
	}
	h.subscriptions[channel][client] = true
	return client
}

func (h *Hub) Unsubscribe(channel string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.subscriptions[channel]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.subscriptions, channel)
		}
	}
	client.doneOnce.Do(func() { close(client.done) })
}

func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.subscriptions[msg.Channel] {
		select {
		case client.Outbound <- msg:
		default:
			// slow consumer; drop rather than block the pipeline
		}
	}
}

// ServeClient streams messages for one subscribed client until the request
// context ends or the client is unsubscribed elsewhere.
func (h *Hub) ServeClient(w http.ResponseWriter, r *http.Request, channel string, client *Client) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()
	defer h.Unsubscribe(channel, client)

	for {
		select {
		case <-r.Context().Done():
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case msg := <-client.Outbound:
			raw, err := json.Marshal(msg.Data)
			if err != nil {
				h.log.Warn("Failed to encode SSE payload", "event", string(msg.Event), "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}
