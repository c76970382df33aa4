// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package services adapts Tasklane's long-running components to suture v4.

Each wrapper implements suture.Service and fmt.Stringer, translating the
component's own lifecycle (ListenAndServe, Run, start-then-shutdown) into a
context-aware Serve.

# Available Services

NATSServerService (data layer):
  - Keeps the embedded NATS server alive and shuts it down last
  - Only used when nats.embedded_server is set

BusConsumerService (messaging layer):
  - Runs eventbus.Bus.Run against the invalidation topic
  - Any exit other than cancellation is a failure, so the consumer
    resubscribes after backoff

WebSocketHubService (messaging layer):
  - Runs websocket.Hub.RunWithContext
  - Closes every live connection on shutdown

HTTPServerService (api layer):
  - Wraps *http.Server with graceful shutdown

# Return Semantics

  - ctx.Err(): shutdown was requested
  - any other error: the component failed and suture restarts it

Components are referenced through small interfaces (HTTPServer,
ContextHub, BusConsumer, NATSServer) so this package does not import the
packages it supervises and tests can substitute doubles.
*/
package services
