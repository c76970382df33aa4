// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package websocket holds the live client connections of this process.

Every connection is registered under its subscriber code. The invalidation
bus looks connections up by code and pushes entity updates to them; a code
without a live connection on this process is skipped.

Key Components:

  - Hub: code to connection map, implements eventbus.ConnLookup
  - Client: one WebSocket connection with read and write goroutines

Connection Lifecycle:

 1. The API upgrades the request and picks the code: the one supplied by a
    reconnecting client, or a new UUID.
 2. The hub registers the client, replacing an older connection with the
    same code.
 3. The client is told its code with a "connected" message.
 4. The client subscribes to entities and receives "update" messages.
 5. On disconnect the hub unregisters the client. Subscriptions of the
    code stay in the registry so a reconnecting client can "sync" them.

Client Messages:

	{"type":"subscribe","data":{"entityType":"task","entityId":5}}
	{"type":"sync"}
	{"type":"ping"}

Server Messages:

	{"type":"connected","data":{"code":"..."}}
	{"type":"subscribed","data":{"entityType":"task","entityId":5}}
	{"type":"sync","data":{"code":"...","subscriptions":{"task":[5]}}}
	{"type":"update","data":{"entityType":"task","entityId":5,"data":{...}}}
	{"type":"pong"}
	{"type":"error","data":{"message":"..."}}

Pushes never block the bus: a client whose send buffer is full drops the
update and is disconnected.

Configuration:

  - writeWait: 10 seconds (time allowed to write message)
  - pongWait: 60 seconds (time allowed to read pong)
  - pingPeriod: 54 seconds (ping interval, must be < pongWait)
  - maxMessageSize: 64 KB (max inbound message size)
*/
package websocket
