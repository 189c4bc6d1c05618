package realtime

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"realtime-service/internal/tenancy"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Client is one live websocket connection. Identity is attached by the
// handshake from server-verified session data and never changes for the
// connection's lifetime; an unauthenticated connection carries nil.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	identity  *tenancy.Identity
	requestID uuid.UUID
	rooms     map[string]bool // guarded by hub.clientsMu
	logger    *zap.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, identity *tenancy.Identity, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		identity:  identity,
		requestID: uuid.New(),
		rooms:     make(map[string]bool),
		logger:    logger,
	}
}

// Identity returns the server-derived identity, nil when unauthenticated
func (c *Client) Identity() *tenancy.Identity {
	return c.identity
}

// RequestID returns the connection's correlation id
func (c *Client) RequestID() uuid.UUID {
	return c.requestID
}

// Register attaches the client to the hub. Synchronous: the client is
// joinable as soon as this returns.
func (c *Client) Register() {
	c.hub.addClient(c)
}

// enqueue attempts a non-blocking delivery to this client only
func (c *Client) enqueue(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// ReadPump pumps inbound frames to the router. One goroutine per
// connection; all reads from the socket go through here.
func (c *Client) ReadPump(router *Router) {
	defer func() {
		router.HandleDisconnect(c)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket error",
					zap.String("request_id", c.requestID.String()),
					zap.Error(err))
			}
			break
		}

		c.handleMessage(router, message)
	}
}

// handleMessage isolates one inbound frame. The read loop has no
// middleware in front of it, so a panic while routing a message must
// not take down the connection or the process.
func (c *Client) handleMessage(router *Router, message []byte) {
	defer func() {
		if err := recover(); err != nil {
			c.logger.Error("panic handling websocket message",
				zap.String("request_id", c.requestID.String()),
				zap.Any("error", err),
				zap.Stack("stacktrace"),
			)
		}
	}()

	router.HandleMessage(c, message)
}

// WritePump pumps the send channel to the socket and keeps the
// connection alive with protocol-level pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
