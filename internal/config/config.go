// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Config is immutable after LoadWithKoanf and safe for concurrent reads.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	NATS       NATSConfig       `koanf:"nats"`
	Cache      CacheConfig      `koanf:"cache"`
	API        APIConfig        `koanf:"api"`
	Security   SecurityConfig   `koanf:"security"`
	Logging    LoggingConfig    `koanf:"logging"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
}

// RedisConfig holds the secondary task store connection when the redis
// backend is selected.
type RedisConfig struct {
	URL              string        `koanf:"url"`
	KeyPrefix        string        `koanf:"key_prefix"`
	OperationTimeout time.Duration `koanf:"operation_timeout"`
	BreakerEnabled   bool          `koanf:"breaker_enabled"`
}

// NATSConfig holds the invalidation bus settings.
//
// The bus uses core NATS subjects only: no JetStream and no queue group, so
// every process receives every message at most once.
type NATSConfig struct {
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded_server"`
	Host           string        `koanf:"host"`
	Port           int           `koanf:"port"`
	Topic          string        `koanf:"topic"`
	MaxReconnects  int           `koanf:"max_reconnects"`
	ReconnectWait  time.Duration `koanf:"reconnect_wait"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`

	// Publish circuit breaker
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
}

// Task view backends.
const (
	TaskViewRedis  = "redis"
	TaskViewBadger = "badger"
)

// CacheConfig sizes the entity stores and selects the secondary task store.
type CacheConfig struct {
	Shards          int    `koanf:"shards"`
	TaskViewBackend string `koanf:"taskview_backend"`
	BadgerPath      string `koanf:"badger_path"`
	BadgerInMemory  bool   `koanf:"badger_in_memory"`
}

// APIConfig holds pagination limits for the read API.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig holds transport protections. Authentication happens
// upstream; the gateway forwards the viewer id in X-User-ID.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	InternalToken     string        `koanf:"internal_token"`
}

// LoggingConfig holds zerolog settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SupervisorConfig tunes the suture tree.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
