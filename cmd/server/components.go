// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/tasklane/internal/api"
	"github.com/tomtom215/tasklane/internal/assemble"
	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/config"
	"github.com/tomtom215/tasklane/internal/database"
	"github.com/tomtom215/tasklane/internal/eventbus"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/materialize"
	"github.com/tomtom215/tasklane/internal/service"
	"github.com/tomtom215/tasklane/internal/subscription"
	"github.com/tomtom215/tasklane/internal/taskview"
	ws "github.com/tomtom215/tasklane/internal/websocket"
)

// defaultCloseTimeout bounds the embedded server shutdown when
// nats.close_timeout is unset.
const defaultCloseTimeout = 5 * time.Second

// components is everything main wires before the supervisor tree starts.
type components struct {
	db         *database.DB
	view       taskview.Store
	nats       *eventbus.EmbeddedServer
	publisher  *eventbus.Publisher
	subscriber message.Subscriber
	bus        *eventbus.Bus
	hub        *ws.Hub

	tasks *service.Tasks
	users *service.Users
	files *service.FileAccess

	closers []func() error
}

// newComponents opens the stores and connects the bus. On error every
// resource opened so far is closed.
func newComponents(cfg *config.Config) (*components, error) {
	c := &components{}
	if err := c.open(cfg); err != nil {
		c.close()
		return nil, err
	}
	return c, nil
}

func (c *components) open(cfg *config.Config) (err error) {
	if c.db, err = database.New(&cfg.Database); err != nil {
		return err
	}
	c.onClose(c.db.Close)
	logging.Info().Msg("Database connected")

	if c.view, err = taskview.New(cfg); err != nil {
		return fmt.Errorf("open task view: %w", err)
	}
	c.onClose(c.view.Close)

	natsCfg := cfg.NATS
	if natsCfg.EmbeddedServer {
		if c.nats, err = eventbus.NewEmbeddedServer(natsCfg.Host, natsCfg.Port); err != nil {
			return err
		}
		c.onClose(func() error {
			timeout := natsCfg.CloseTimeout
			if timeout <= 0 {
				timeout = defaultCloseTimeout
			}
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return c.nats.Shutdown(ctx)
		})
		natsCfg.URL = c.nats.ClientURL()
		logging.Info().Str("url", natsCfg.URL).Msg("Embedded NATS server started")
	}

	wmLogger := logging.NewWatermillLogger()
	if c.publisher, err = eventbus.NewPublisher(&natsCfg, wmLogger); err != nil {
		return err
	}
	c.onClose(c.publisher.Close)
	c.publisher.SetCircuitBreaker(eventbus.NewCircuitBreaker(eventbus.CircuitBreakerConfig{
		Name:             "nats-publisher",
		MaxRequests:      1,
		Timeout:          natsCfg.BreakerTimeout,
		FailureThreshold: natsCfg.BreakerFailureThreshold,
	}))

	if c.subscriber, err = eventbus.NewSubscriber(&natsCfg, wmLogger); err != nil {
		return err
	}
	c.onClose(c.subscriber.Close)

	stores := cache.NewStores(cache.Config{Shards: cfg.Cache.Shards})
	registry := subscription.New(cfg.Cache.Shards)
	c.hub = ws.NewHub(registry)
	c.bus = eventbus.New(natsCfg.Topic, c.publisher, c.subscriber, eventbus.Deps{
		Stores:   stores,
		View:     c.view,
		Registry: registry,
		Conns:    c.hub,
	})

	loader := materialize.NewLoader(stores, c.db, c.view)
	c.tasks = service.NewTasks(loader, assemble.NewMemberResolver(stores))
	c.users = service.NewUsers(stores, c.db, loader)
	c.files = service.NewFileAccess(stores, c.db, loader)
	return nil
}

func (c *components) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// close releases resources in reverse order of opening.
func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			logging.Error().Err(err).Msg("Error closing component")
		}
	}
	c.closers = nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

type connectivity interface {
	Connected() bool
	BreakerState() string
}

type readySignal interface {
	Ready() <-chan struct{}
}

var (
	errBusDisconnected = errors.New("NATS connection down")
	errBusNotConsuming = errors.New("bus consumer not subscribed")
	errBusBreakerOpen  = errors.New("publish circuit breaker open")
)

// readinessChecks probes the stores the read path depends on and the bus
// that keeps them coherent.
func readinessChecks(db, view pinger, pub connectivity, bus readySignal) []api.ReadinessCheck {
	return []api.ReadinessCheck{
		{Name: "database", Check: db.Ping},
		{Name: "taskview", Check: view.Ping},
		{Name: "bus", Check: func(context.Context) error {
			if !pub.Connected() {
				return errBusDisconnected
			}
			if pub.BreakerState() == "open" {
				return errBusBreakerOpen
			}
			select {
			case <-bus.Ready():
				return nil
			default:
				return errBusNotConsuming
			}
		}},
	}
}
