// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

/*
Package config provides centralized configuration management for Tasklane.

# Configuration Sources

LoadWithKoanf layers three sources, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, config.yaml, config.yml,
    /etc/tasklane/config.yaml, /etc/tasklane/config.yml
 3. Environment variables, mapped explicitly to config keys

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development or production

PostgreSQL:
  - DATABASE_URL
  - DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS, DB_CONN_MAX_LIFETIME,
    DB_CONN_MAX_IDLE_TIME, DB_QUERY_TIMEOUT

Task view (secondary store):
  - TASKVIEW_BACKEND: redis (default) or badger
  - REDIS_URL, REDIS_KEY_PREFIX, REDIS_OPERATION_TIMEOUT, REDIS_BREAKER_ENABLED
  - BADGER_PATH, BADGER_IN_MEMORY
  - CACHE_SHARDS: lock shards per entity store (default 32)

Invalidation bus:
  - NATS_URL, NATS_EMBEDDED (default true), NATS_HOST, NATS_PORT
  - NATS_TOPIC (default updateData)
  - NATS_MAX_RECONNECTS, NATS_RECONNECT_WAIT, NATS_CLOSE_TIMEOUT
  - NATS_BREAKER_FAILURE_THRESHOLD, NATS_BREAKER_TIMEOUT

API and security:
  - API_DEFAULT_PAGE_SIZE, API_MAX_PAGE_SIZE
  - CORS_ORIGINS (comma separated), RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW,
    DISABLE_RATE_LIMIT
  - INTERNAL_API_TOKEN: bearer token for POST /api/v1/internal/notify

Logging and supervision:
  - LOG_LEVEL, LOG_FORMAT (json or console), LOG_CALLER
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY,
    SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT
*/
package config
