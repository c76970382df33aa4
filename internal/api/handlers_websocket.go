// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/tasklane/internal/logging"
	ws "github.com/tomtom215/tasklane/internal/websocket"
)

// WebSocket upgrades to a live connection registered under a subscriber
// code. A client reconnecting after a drop passes its previous code to
// keep its subscriptions; otherwise a new code is issued and announced in
// the connected message.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		code = uuid.NewString()
	} else if _, err := uuid.Parse(code); err != nil {
		NewResponseWriter(w, r).BadRequest("code must be a UUID")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.deps.Hub, conn, code)
	h.deps.Hub.RegisterConnection(code, client)
	client.Start()
}
