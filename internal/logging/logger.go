// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every line unless Config.Service overrides it.
const ServiceName = "tasklane"

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: trace, debug, info, warn, error or disabled.
	Level string

	// Format is json (default) or console.
	Format string

	Caller    bool
	Timestamp bool

	// Service is written as the "service" field, suffixed with @hostname.
	Service string

	Output io.Writer
}

// DefaultConfig returns JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Service:   ServiceName,
		Output:    os.Stderr,
	}
}

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

//nolint:gochecknoinits // packages log before main calls Init
func init() {
	log = build(DefaultConfig())
}

// Init replaces the global logger. Later calls win.
func Init(cfg Config) {
	l := build(cfg)
	mu.Lock()
	log = l
	mu.Unlock()
}

func build(cfg Config) zerolog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	if cfg.Service == "" {
		cfg.Service = ServiceName
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"

	var out io.Writer = cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05.000"}
	}

	ctx := zerolog.New(out).With().Str("service", serviceField(cfg.Service))
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

func serviceField(service string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return service
	}
	return service + "@" + host
}

// parseLevel maps a configured level to zerolog, falling back to info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	if level == "" {
		return zerolog.InfoLevel
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

// With starts a child logger context.
//
//	busLogger := logging.With().Str("component", "eventbus").Logger()
func With() zerolog.Context { return current().With() }

func Debug() *zerolog.Event { return current().Debug() }
func Info() *zerolog.Event  { return current().Info() }
func Warn() *zerolog.Event  { return current().Warn() }
func Error() *zerolog.Event { return current().Error() }

// Fatal logs and then calls os.Exit(1).
func Fatal() *zerolog.Event { return current().Fatal() }

// WithComponent returns a child logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}

// NewTestLogger writes to w, for capturing output in tests.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
