// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/tasklane/internal/logging"
)

// errSubscriptionClosed is returned when the bus subscription ends while
// the service is still wanted, so suture restarts the consumer.
var errSubscriptionClosed = errors.New("bus subscription closed")

// BusConsumer is satisfied by *eventbus.Bus.
type BusConsumer interface {
	Run(ctx context.Context) error
	Topic() string
}

// BusConsumerService applies invalidation events from the bus to the local
// cache and pushes them to subscribed connections.
//
// A consumer that drops off the topic leaves the cache serving stale
// snapshots, so every exit other than cancellation is reported as a
// failure and the consumer resubscribes after suture's backoff.
type BusConsumerService struct {
	bus  BusConsumer
	name string
}

// NewBusConsumerService wraps bus.
func NewBusConsumerService(bus BusConsumer) *BusConsumerService {
	return &BusConsumerService{
		bus:  bus,
		name: "bus-consumer",
	}
}

// Serve implements suture.Service.
func (s *BusConsumerService) Serve(ctx context.Context) error {
	err := s.bus.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errSubscriptionClosed
	}
	logging.Warn().Err(err).Str("topic", s.bus.Topic()).Msg("Bus consumer stopped, restarting")
	return fmt.Errorf("bus consumer: %w", err)
}

func (s *BusConsumerService) String() string {
	return s.name
}
