// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package config

import (
	"fmt"
	"strings"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateNATS(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateSupervisor(); err != nil {
		return err
	}

	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if err := validateDatabaseURL(c.Database.URL); err != nil {
		return fmt.Errorf("DATABASE_URL is invalid: %w", err)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns < 0 || c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS (%d), got %d",
			c.Database.MaxOpenConns, c.Database.MaxIdleConns)
	}
	if c.Database.QueryTimeout <= 0 {
		return fmt.Errorf("DB_QUERY_TIMEOUT must be positive")
	}
	return nil
}

// validateCache validates entity store sizing and the task view backend.
// Redis settings are only checked when the redis backend is selected.
func (c *Config) validateCache() error {
	if c.Cache.Shards < 1 || c.Cache.Shards > 4096 {
		return fmt.Errorf("CACHE_SHARDS must be between 1 and 4096, got %d", c.Cache.Shards)
	}

	switch c.Cache.TaskViewBackend {
	case TaskViewRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when TASKVIEW_BACKEND=redis")
		}
		if err := validateRedisURL(c.Redis.URL); err != nil {
			return fmt.Errorf("REDIS_URL is invalid: %w", err)
		}
		if c.Redis.OperationTimeout <= 0 {
			return fmt.Errorf("REDIS_OPERATION_TIMEOUT must be positive")
		}
	case TaskViewBadger:
		if !c.Cache.BadgerInMemory && c.Cache.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required when TASKVIEW_BACKEND=badger and BADGER_IN_MEMORY=false")
		}
	default:
		return fmt.Errorf("TASKVIEW_BACKEND must be %q or %q, got %q",
			TaskViewRedis, TaskViewBadger, c.Cache.TaskViewBackend)
	}
	return nil
}

func (c *Config) validateNATS() error {
	if c.NATS.Topic == "" {
		return fmt.Errorf("NATS_TOPIC is required")
	}
	if c.NATS.EmbeddedServer {
		if c.NATS.Port < 1 || c.NATS.Port > 65535 {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535, got %d", c.NATS.Port)
		}
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_EMBEDDED=false")
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1, got %d", c.API.DefaultPageSize)
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE (%d) must not be below API_DEFAULT_PAGE_SIZE (%d)",
			c.API.MaxPageSize, c.API.DefaultPageSize)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}

	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must not contain * in production")
			}
		}
		if c.Security.InternalToken == "" {
			return fmt.Errorf("INTERNAL_API_TOKEN is required in production")
		}
	}
	return nil
}

func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive")
	}
	if c.Supervisor.ShutdownTimeout <= 0 {
		return fmt.Errorf("SUPERVISOR_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}
