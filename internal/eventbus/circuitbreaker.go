// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package eventbus

import (
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/tasklane/internal/logging"
)

// CircuitBreakerConfig configures the publish circuit breaker.
type CircuitBreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// NewCircuitBreaker creates a circuit breaker that opens after
// FailureThreshold consecutive failures.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[any] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	return gobreaker.NewCircuitBreaker[any](settings)
}

// CircuitBreakerState returns the breaker state for health reporting.
func CircuitBreakerState(cb *gobreaker.CircuitBreaker[any]) string {
	if cb == nil {
		return "disabled"
	}
	return cb.State().String()
}
