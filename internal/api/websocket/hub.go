package websocket

import (
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "florbal",
	Subsystem: "live",
	Name:      "websocket_clients",
	Help:      "Connected live session websocket clients.",
})

type message struct {
	sessionID string
	data      []byte
}

// Hub fans session updates out to the clients watching that session.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once

	mu    sync.RWMutex
	count int

	log logrus.FieldLogger
}

// NewHub creates a hub; Run must be started before clients connect.
func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		done:       make(chan struct{}),
		log:        log.WithField("component", "ws-hub"),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
			if client.snapshot != nil {
				if data, ok := client.snapshot(); ok {
					select {
					case client.send <- data:
					default:
					}
				}
			}

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.setCount(len(h.clients))
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.sessionID != msg.sessionID {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.setCount(len(h.clients))

		case <-h.done:
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*Client]bool)
			h.setCount(0)
			return
		}
	}
}

// Stop ends Run and disconnects every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Broadcast sends payload as JSON to the clients of sessionID.
func (h *Hub) Broadcast(sessionID string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.WithError(err).WithField("session", sessionID).Error("failed to encode update")
		return
	}

	select {
	case h.broadcast <- message{sessionID: sessionID, data: data}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
	connectedClients.Set(float64(n))
}
