package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure EventDispatcher implements the interface.
var _ driving.EventDispatcher = (*EventDispatcher)(nil)

// DefaultDispatchLimit is how many events one dispatch claims.
const DefaultDispatchLimit = 100

// publish records an event after the state change it describes has been
// committed. A nil outbox disables events.
func publish(ctx context.Context, outbox driven.Outbox, tenantID string, eventType domain.EventType, payload map[string]any) {
	if outbox == nil {
		return
	}
	event := &domain.OutboxEvent{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: time.Now(),
	}
	if err := outbox.Enqueue(ctx, event); err != nil {
		logger.Warn("enqueue %s for %s: %v", eventType, tenantID, err)
	}
}

// EventDispatcher delivers outbox events to a sink.
// Events are claimed before delivery, so each is sent at most once.
type EventDispatcher struct {
	outbox driven.Outbox
	sink   driven.EventSink
}

// NewEventDispatcher creates a dispatcher. A nil sink only logs events.
func NewEventDispatcher(outbox driven.Outbox, sink driven.EventSink) *EventDispatcher {
	return &EventDispatcher{outbox: outbox, sink: sink}
}

// Dispatch claims up to limit events and delivers them in order.
// Delivery failures are logged; the event stays dispatched.
func (d *EventDispatcher) Dispatch(ctx context.Context, limit int) (int, error) {
	if d.outbox == nil {
		return 0, nil
	}
	if limit <= 0 {
		limit = DefaultDispatchLimit
	}

	events, err := d.outbox.Claim(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("claim events: %w", err)
	}

	delivered := 0
	for i := range events {
		event := events[i]
		if d.sink == nil {
			logger.Info("event %s %s tenant=%s", event.Type, event.ID, event.TenantID)
			delivered++
			continue
		}
		if err := d.sink.Deliver(ctx, event); err != nil {
			logger.Warn("deliver event %s (%s): %v", event.ID, event.Type, err)
			continue
		}
		delivered++
	}
	return delivered, nil
}
