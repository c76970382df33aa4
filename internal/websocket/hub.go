// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/tasklane/internal/eventbus"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
	"github.com/tomtom215/tasklane/internal/subscription"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub maps subscriber codes to live connections.
type Hub struct {
	registry *subscription.Registry

	mu      sync.RWMutex
	clients map[string]*Client

	unregister chan *Client
	done       chan struct{}
	doneOnce   sync.Once
}

// NewHub creates a hub that serves subscribe and sync requests from registry.
func NewHub(registry *subscription.Registry) *Hub {
	return &Hub{
		registry:   registry,
		clients:    make(map[string]*Client),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// RegisterConnection makes c the live connection of code. An older
// connection under the same code is closed.
func (h *Hub) RegisterConnection(code string, c *Client) {
	h.mu.Lock()
	old := h.clients[code]
	h.clients[code] = c
	total := len(h.clients)
	h.mu.Unlock()

	if old != nil && old != c {
		old.closeSend()
		logging.Debug().Str("code", code).Msg("websocket connection replaced")
	}
	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client connected")
}

// LookupConnection returns the live connection of code.
func (h *Hub) LookupConnection(code string) (eventbus.Conn, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[code]
	if !ok {
		return nil, false
	}
	return c, true
}

// RunWithContext processes disconnects until ctx is canceled, then closes
// every client.
//
// Shutdown takes priority over pending disconnects.
func (h *Hub) RunWithContext(ctx context.Context) error {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case c := <-h.unregister:
			h.remove(c)
		}
	}
}

// Unregister removes c. It never blocks once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		h.remove(c)
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if h.clients[c.code] == c {
		delete(h.clients, c.code)
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.closeSend()
	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients closes every client in code order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	codes := make([]string, 0, len(h.clients))
	for code := range h.clients {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	clients := make([]*Client, 0, len(codes))
	for _, code := range codes {
		clients = append(clients, h.clients[code])
		delete(h.clients, code)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.closeSend()
	}
	metrics.WebSocketConnections.Set(0)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
