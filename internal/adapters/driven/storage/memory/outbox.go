package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure Outbox implements the interface.
var _ driven.Outbox = (*Outbox)(nil)

// Outbox is an in-memory implementation of driven.Outbox.
type Outbox struct {
	mu     sync.Mutex
	events []domain.OutboxEvent
}

// NewOutbox creates a new in-memory outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

// Enqueue records an event.
func (o *Outbox) Enqueue(_ context.Context, event *domain.OutboxEvent) error {
	if event == nil || event.ID == "" || event.TenantID == "" || event.Type == "" {
		return domain.ErrInvalidInput
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := range o.events {
		if o.events[i].ID == event.ID {
			return domain.ErrAlreadyExists
		}
	}
	stored := *event
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.Payload = copyMap(event.Payload)
	stored.DispatchedAt = time.Time{}
	o.events = append(o.events, stored)
	return nil
}

// Claim marks up to limit pending events dispatched and returns them, oldest first.
func (o *Outbox) Claim(_ context.Context, limit int) ([]domain.OutboxEvent, error) {
	if limit <= 0 {
		return nil, nil
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	var claimed []domain.OutboxEvent
	for i := range o.events {
		if len(claimed) == limit {
			break
		}
		if !o.events[i].DispatchedAt.IsZero() {
			continue
		}
		o.events[i].DispatchedAt = now
		claimed = append(claimed, o.events[i])
	}
	return claimed, nil
}

// Pending returns how many events are waiting for delivery.
func (o *Outbox) Pending(_ context.Context) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for i := range o.events {
		if o.events[i].DispatchedAt.IsZero() {
			n++
		}
	}
	return n, nil
}

// Events returns every recorded event in insertion order.
func (o *Outbox) Events() []domain.OutboxEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.OutboxEvent(nil), o.events...)
}
