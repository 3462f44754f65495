package api

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/match-predictor/internal/metrics"
	"github.com/yourusername/match-predictor/internal/service"
)

// MessageTypePredictions tags a pushed prediction batch.
const MessageTypePredictions = "predictions"

const broadcastBufferSize = 64

// ServerMessage is the envelope written to websocket clients.
type ServerMessage struct {
	Type      string                    `json:"type"`
	Country   string                    `json:"country"`
	Payload   []service.MatchPrediction `json:"payload"`
	Timestamp time.Time                 `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts prediction batches to them
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan ServerMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	logger *logrus.Entry
}

// NewHub creates a new Hub instance
func NewHub(log *logrus.Logger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan ServerMessage, broadcastBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     log.WithField("component", "ws_hub"),
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("Websocket hub started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// BroadcastPredictions queues a prediction batch for every subscribed client.
// The batch is dropped when the broadcast buffer is full.
func (h *Hub) BroadcastPredictions(country string, results []service.MatchPrediction) {
	msg := ServerMessage{
		Type:      MessageTypePredictions,
		Country:   country,
		Payload:   results,
		Timestamp: time.Now().UTC(),
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.WithField("country", country).Warn("Broadcast buffer full, dropping message")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.clientsMu.Unlock()

	metrics.UpdateWebsocketClients(total)
	h.logger.WithFields(logrus.Fields{"client_id": c.ID, "total": total}).Info("Client connected")
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.Send)
	}
	total := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		metrics.UpdateWebsocketClients(total)
		h.logger.WithFields(logrus.Fields{"client_id": c.ID, "total": total}).Info("Client disconnected")
	}
}

func (h *Hub) broadcastMessage(msg ServerMessage) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	sent := 0
	for _, c := range clients {
		if !c.Subscribed(msg.Country) {
			continue
		}
		if c.TrySend(msg) {
			sent++
			continue
		}
		// too slow to keep up
		h.logger.WithField("client_id", c.ID).Warn("Client buffer full, disconnecting")
		h.unregisterClient(c)
	}

	h.logger.WithFields(logrus.Fields{
		"country": msg.Country,
		"matches": len(msg.Payload),
		"sent":    sent,
	}).Debug("Predictions broadcast")
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	for c := range h.clients {
		close(c.Send)
		delete(h.clients, c)
	}
	h.clientsMu.Unlock()

	metrics.UpdateWebsocketClients(0)
	h.logger.Info("Websocket hub stopped")
}
