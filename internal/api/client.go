package api

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBufferSize = 16
)

// Client actions
const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
)

// ClientMessage is sent by websocket clients to pick a country.
type ClientMessage struct {
	Action  string `json:"action"`
	Country string `json:"country"`
}

// Client is one websocket connection
type Client struct {
	ID   string
	Send chan ServerMessage

	conn   *websocket.Conn
	hub    *Hub
	logger *logrus.Entry

	countryMu sync.RWMutex
	country   string
	muted     bool
}

// NewClient creates a client subscribed to country ("" receives every batch)
func NewClient(id string, conn *websocket.Conn, hub *Hub, country string) *Client {
	return &Client{
		ID:      id,
		Send:    make(chan ServerMessage, sendBufferSize),
		conn:    conn,
		hub:     hub,
		logger:  hub.logger.WithField("client_id", id),
		country: normalizeCountry(country),
	}
}

// Subscribed reports whether batches for country should reach this client
func (c *Client) Subscribed(country string) bool {
	c.countryMu.RLock()
	defer c.countryMu.RUnlock()
	if c.muted {
		return false
	}
	return c.country == "" || c.country == normalizeCountry(country)
}

// SetCountry changes the client's subscription; "" receives every batch
func (c *Client) SetCountry(country string) {
	c.countryMu.Lock()
	defer c.countryMu.Unlock()
	c.country = normalizeCountry(country)
	c.muted = false
}

// Unsubscribe stops batch delivery until the next subscribe
func (c *Client) Unsubscribe() {
	c.countryMu.Lock()
	defer c.countryMu.Unlock()
	c.country = ""
	c.muted = true
}

// TrySend queues a message without blocking; false means the buffer is full
func (c *Client) TrySend(msg ServerMessage) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		return false
	}
}

// ReadPump reads subscription changes until the connection fails
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("Unexpected websocket close")
			}
			return
		}
		c.handleClientMessage(msg)
	}
}

// WritePump writes queued messages and keepalive pings
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.WithError(err).Debug("Websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleClientMessage(msg ClientMessage) {
	switch msg.Action {
	case ActionSubscribe:
		c.SetCountry(msg.Country)
	case ActionUnsubscribe:
		c.Unsubscribe()
	default:
		c.logger.WithField("action", msg.Action).Debug("Ignoring unknown client action")
		return
	}
	c.logger.WithField("country", msg.Country).Debug("Subscription changed")
}

func normalizeCountry(country string) string {
	return strings.ToLower(strings.TrimSpace(country))
}
