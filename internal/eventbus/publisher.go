// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package eventbus

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tasklane/internal/config"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("publisher is closed")

// Publisher wraps a Watermill NATS publisher with a circuit breaker.
// It implements message.Publisher.
type Publisher struct {
	publisher      message.Publisher
	circuitBreaker *gobreaker.CircuitBreaker[any]
	connected      atomic.Bool

	mu     sync.RWMutex
	closed bool
}

// NewPublisher connects a core NATS publisher. JetStream is disabled.
func NewPublisher(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*Publisher, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	p := &Publisher{}

	natsOpts := []natsgo.Option{
		natsgo.Name("tasklane-publisher"),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			p.connected.Store(false)
			if err != nil {
				logger.Error("NATS publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			p.connected.Store(true)
			logger.Info("NATS publisher reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
		natsgo.ClosedHandler(func(*natsgo.Conn) {
			p.connected.Store(false)
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled: true,
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	p.publisher = pub
	p.connected.Store(true)
	return p, nil
}

// NewPublisherWith wraps an existing Watermill publisher.
func NewPublisherWith(pub message.Publisher) *Publisher {
	p := &Publisher{publisher: pub}
	p.connected.Store(true)
	return p
}

// SetCircuitBreaker configures the circuit breaker for publish operations.
func (p *Publisher) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[any]) {
	p.circuitBreaker = cb
}

// Publish sends messages to topic through the circuit breaker.
func (p *Publisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if p.circuitBreaker == nil {
		return p.publisher.Publish(topic, msgs...)
	}
	_, err := p.circuitBreaker.Execute(func() (any, error) {
		return nil, p.publisher.Publish(topic, msgs...)
	})
	return err
}

// Connected reports whether the NATS connection is up.
func (p *Publisher) Connected() bool {
	return p.connected.Load()
}

// BreakerState reports the circuit breaker state.
func (p *Publisher) BreakerState() string {
	return CircuitBreakerState(p.circuitBreaker)
}

// Close shuts down the publisher.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.connected.Store(false)
	return p.publisher.Close()
}
