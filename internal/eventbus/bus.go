// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package eventbus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tasklane/internal/cache"
	"github.com/tomtom215/tasklane/internal/logging"
	"github.com/tomtom215/tasklane/internal/metrics"
	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/subscription"
	"github.com/tomtom215/tasklane/internal/taskview"
)

// Deps are the components the bus reads and patches.
type Deps struct {
	Stores   *cache.Stores
	View     taskview.Store
	Registry *subscription.Registry
	Conns    ConnLookup
}

// Bus publishes invalidation events and applies the ones it receives.
type Bus struct {
	topic      string
	publisher  message.Publisher
	subscriber message.Subscriber
	deps       Deps

	readyOnce sync.Once
	ready     chan struct{}
}

// New creates a bus on topic. An empty topic selects DefaultTopic.
func New(topic string, pub message.Publisher, sub message.Subscriber, deps Deps) *Bus {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Bus{
		topic:      topic,
		publisher:  pub,
		subscriber: sub,
		deps:       deps,
		ready:      make(chan struct{}),
	}
}

// Topic returns the bus topic.
func (b *Bus) Topic() string {
	return b.topic
}

// Ready is closed once Run has subscribed.
func (b *Bus) Ready() <-chan struct{} {
	return b.ready
}

// Publish announces a committed change of an entity to every process.
func (b *Bus) Publish(ctx context.Context, entityType models.EntityType, entityID int64, data map[string]any) error {
	ev := Event{EntityType: entityType, EntityID: entityID, Data: data}
	if err := ev.Validate(); err != nil {
		return err
	}
	payload, err := MarshalEvent(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("entity_type", string(entityType))
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set("correlation_id", id)
	}

	err = b.publisher.Publish(b.topic, msg)
	metrics.RecordBusPublish(string(entityType), err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", ev.Key(), err)
	}
	return nil
}

// Run consumes the topic until ctx is canceled or the subscription closes.
// Messages are handled one at a time in arrival order.
func (b *Bus) Run(ctx context.Context) error {
	messages, err := b.subscriber.Subscribe(ctx, b.topic)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.topic, err)
	}
	b.readyOnce.Do(func() { close(b.ready) })
	logging.Info().Str("topic", b.topic).Msg("Invalidation bus consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(ctx, msg)
			msg.Ack()
		}
	}
}

func (b *Bus) handle(ctx context.Context, msg *message.Message) {
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}

	ev, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		metrics.BusReceived.WithLabelValues("unknown", "malformed").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("message_uuid", msg.UUID).
			Msg("Dropping malformed invalidation message")
		return
	}

	if err := b.apply(ctx, ev); err != nil {
		metrics.BusReceived.WithLabelValues(string(ev.EntityType), "error").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("entity", ev.Key().String()).
			Msg("Failed to apply invalidation message")
	} else {
		metrics.BusReceived.WithLabelValues(string(ev.EntityType), "applied").Inc()
	}

	b.push(ev)
}

// apply patches the local copy of the entity named by ev.
func (b *Bus) apply(ctx context.Context, ev Event) error {
	stores := b.deps.Stores
	switch ev.EntityType {
	case models.EntityUser:
		_, _, err := stores.Users.Patch(ev.EntityID, ev.Data)
		return err

	case models.EntityProject:
		_, _, err := stores.Projects.Patch(ev.EntityID, ev.Data)
		return err

	case models.EntityMembership:
		m, ok, err := stores.Memberships.Patch(ev.EntityID, ev.Data)
		if err != nil {
			return err
		}
		if ok {
			// A member leaving a project must not keep reading it from the index.
			if m.Deleted() {
				stores.Tasks.InvalidateViewer(m.UserID)
			}
			return nil
		}
		m, complete, err := membershipRow(ev)
		if err != nil || !complete {
			return err
		}
		stores.Memberships.Put(m)
		return nil

	case models.EntityTask:
		return b.applyTask(ctx, ev)
	}
	return fmt.Errorf("%w: unknown entity type %q", ErrMalformedEvent, ev.EntityType)
}

func (b *Bus) applyTask(ctx context.Context, ev Event) error {
	var oldProject int64
	if rows, err := b.deps.View.Get(ctx, []int64{ev.EntityID}); err == nil && len(rows) == 1 {
		oldProject = rows[0].ProjectID
	}

	var errs []error
	candidates := []int64{oldProject, projectIDOf(ev.Data)}
	patched, ok, err := b.deps.View.Patch(ctx, ev.EntityID, ev.Data)
	if err != nil {
		errs = append(errs, err)
	}
	if ok {
		candidates = append(candidates, patched.ProjectID)
	}

	// The index is dropped even when the patch failed, so the next read
	// goes back to the authoritative store.
	invalidated := map[int64]struct{}{}
	for _, pid := range candidates {
		if pid == 0 {
			continue
		}
		if _, done := invalidated[pid]; done {
			continue
		}
		invalidated[pid] = struct{}{}
		b.deps.Stores.Tasks.InvalidateProject(pid)
	}
	if len(invalidated) == 0 {
		logging.Ctx(ctx).Debug().Int64("task_id", ev.EntityID).
			Msg("Task update without a known project")
	}
	return errors.Join(errs...)
}

// push delivers ev to every subscriber with a live local connection.
func (b *Bus) push(ev Event) {
	if b.deps.Registry == nil || b.deps.Conns == nil {
		return
	}
	for _, code := range b.deps.Registry.Subscribers(ev.EntityType, ev.EntityID) {
		conn, ok := b.deps.Conns.LookupConnection(code)
		if !ok {
			metrics.BusPushes.WithLabelValues("no_connection").Inc()
			continue
		}
		if err := conn.Push(ev); err != nil {
			metrics.BusPushes.WithLabelValues("dropped").Inc()
			logging.Debug().Err(err).Str("code", code).Msg("Push to live connection failed")
			continue
		}
		metrics.BusPushes.WithLabelValues("delivered").Inc()
	}
}

// membershipRow decodes ev.Data as a whole membership row. It reports false
// when the row lacks its identifying fields.
func membershipRow(ev Event) (models.Membership, bool, error) {
	for _, field := range []string{"id", "projectId", "userId"} {
		if _, ok := ev.Data[field]; !ok {
			return models.Membership{}, false, nil
		}
	}
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return models.Membership{}, false, err
	}
	var m models.Membership
	if err := json.Unmarshal(data, &m); err != nil {
		return models.Membership{}, false, fmt.Errorf("%w: membership row: %v", ErrMalformedEvent, err)
	}
	if m.ID != ev.EntityID || m.ProjectID == 0 || m.UserID == 0 {
		return models.Membership{}, false, nil
	}
	return m, true, nil
}

func projectIDOf(data map[string]any) int64 {
	switch v := data["projectId"].(type) {
	case json.Number:
		id, _ := v.Int64()
		return id
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}
