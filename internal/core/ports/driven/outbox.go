package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// Outbox records post-commit events for later delivery.
type Outbox interface {
	// Enqueue records an event.
	Enqueue(ctx context.Context, event *domain.OutboxEvent) error

	// Claim marks up to limit undispatched events as dispatched and returns
	// them, oldest first. A claimed event is never returned again.
	Claim(ctx context.Context, limit int) ([]domain.OutboxEvent, error)

	// Pending returns how many events are waiting for delivery.
	Pending(ctx context.Context) (int, error)
}

// EventSink delivers a claimed event to an external receiver.
type EventSink interface {
	// Deliver sends one event.
	Deliver(ctx context.Context, event domain.OutboxEvent) error
}
