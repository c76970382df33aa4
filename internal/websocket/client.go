// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/tasklane/internal/eventbus"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	sendBufferSize = 256
)

// Message types exchanged with clients.
const (
	MessageTypeConnected  = "connected"
	MessageTypeSubscribe  = "subscribe"
	MessageTypeSubscribed = "subscribed"
	MessageTypeSync       = "sync"
	MessageTypeUpdate     = "update"
	MessageTypePing       = "ping"
	MessageTypePong       = "pong"
	MessageTypeError      = "error"
)

var (
	// ErrConnectionClosed is returned by Push after the client went away.
	ErrConnectionClosed = errors.New("websocket: connection closed")

	// ErrSendBufferFull is returned by Push when the client cannot keep up.
	ErrSendBufferFull = errors.New("websocket: send buffer full")
)

// Message is a server to client message.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// inbound is a client to server message.
type inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// SubscribeRequest is the data of a subscribe message.
type SubscribeRequest struct {
	EntityType models.EntityType `json:"entityType"`
	EntityID   int64             `json:"entityId"`
}

// SyncData answers a sync message.
type SyncData struct {
	Code          string                        `json:"code"`
	Subscriptions map[models.EntityType][]int64 `json:"subscriptions"`
}

// Client is one live connection registered under a subscriber code.
type Client struct {
	code string
	hub  *Hub
	conn *websocket.Conn

	mu     sync.Mutex
	send   chan Message
	closed bool
}

// NewClient creates a client for conn under code.
func NewClient(hub *Hub, conn *websocket.Conn, code string) *Client {
	return &Client{
		code: code,
		hub:  hub,
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}
}

// Code returns the subscriber code.
func (c *Client) Code() string {
	return c.code
}

// Push queues an entity update without blocking. A client that cannot keep
// up is disconnected.
func (c *Client) Push(ev eventbus.Event) error {
	err := c.enqueue(Message{Type: MessageTypeUpdate, Data: ev})
	if errors.Is(err, ErrSendBufferFull) {
		logging.Warn().Str("code", c.code).Msg("websocket send buffer full, disconnecting client")
		go c.hub.Unregister(c)
	}
	return err
}

func (c *Client) enqueue(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// closeSend closes the send channel once; the write pump then sends a close
// frame.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Start sends the connected message and begins reading and writing.
func (c *Client) Start() {
	_ = c.enqueue(Message{Type: MessageTypeConnected, Data: map[string]string{"code": c.code}})
	go c.writePump()
	go c.readPump()
}

// readPump reads client messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("code", c.code).Msg("unexpected websocket close error")
			}
			return
		}
		reply := c.handle(data)
		if reply == nil {
			continue
		}
		if err := c.enqueue(*reply); err != nil {
			return
		}
	}
}

// handle answers one client message. It returns nil when there is nothing
// to send back.
func (c *Client) handle(data []byte) *Message {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return errorMessage("invalid message")
	}

	switch msg.Type {
	case MessageTypePing:
		return &Message{Type: MessageTypePong}

	case MessageTypeSubscribe:
		var req SubscribeRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			return errorMessage("invalid subscribe request")
		}
		if !req.EntityType.Valid() || req.EntityID <= 0 {
			return errorMessage("unknown entity")
		}
		c.hub.registry.Subscribe(req.EntityType, req.EntityID, c.code)
		return &Message{Type: MessageTypeSubscribed, Data: req}

	case MessageTypeSync:
		subs := c.hub.registry.ListSubscriptions(c.code)
		if subs == nil {
			subs = map[models.EntityType][]int64{}
		}
		return &Message{Type: MessageTypeSync, Data: SyncData{Code: c.code, Subscriptions: subs}}

	default:
		return errorMessage("unknown message type")
	}
}

func errorMessage(text string) *Message {
	return &Message{Type: MessageTypeError, Data: map[string]string{"message": text}}
}

// writePump writes queued messages and pings until the send channel closes.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// Encoded here rather than with WriteJSON so json.Number values
			// in pushed patches stay numbers.
			data, err := json.Marshal(message)
			if err != nil {
				logging.Error().Err(err).Str("type", message.Type).Msg("failed to encode websocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
