package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// outbox implements driven.Outbox.
type outbox struct {
	store *Store
}

var _ driven.Outbox = (*outbox)(nil)

// Enqueue records an event.
func (o *outbox) Enqueue(ctx context.Context, event *domain.OutboxEvent) error {
	if event == nil || event.ID == "" || event.TenantID == "" || event.Type == "" {
		return domain.ErrInvalidInput
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	payloadJSON, err := marshalJSON(event.Payload)
	if err != nil {
		return fmt.Errorf("marshalling payload: %w", err)
	}

	_, err = o.store.db.ExecContext(ctx, `
		INSERT INTO outbox (id, tenant_id, type, payload, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.TenantID, string(event.Type), payloadJSON, formatTime(event.CreatedAt))
	if err != nil {
		return fmt.Errorf("enqueueing event: %w", err)
	}
	return nil
}

// Claim marks up to limit events dispatched in a single statement, so two
// dispatchers never receive the same event.
func (o *outbox) Claim(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := o.store.db.QueryContext(ctx, `
		UPDATE outbox SET dispatched_at = ?
		WHERE seq IN (
			SELECT seq FROM outbox WHERE dispatched_at IS NULL ORDER BY seq LIMIT ?
		)
		RETURNING seq, id, tenant_id, type, payload, created_at, dispatched_at
	`, formatTime(time.Now()), limit)
	if err != nil {
		return nil, fmt.Errorf("claiming events: %w", err)
	}
	defer rows.Close()

	type claimed struct {
		seq   int64
		event domain.OutboxEvent
	}
	var out []claimed //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c claimed
		var eventType, createdAt string
		var payloadJSON, dispatchedAt sql.NullString
		if err := rows.Scan(&c.seq, &c.event.ID, &c.event.TenantID, &eventType, &payloadJSON,
			&createdAt, &dispatchedAt); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		c.event.Type = domain.EventType(eventType)
		c.event.CreatedAt = parseTime(createdAt)
		c.event.DispatchedAt = parseNullableTime(dispatchedAt)
		if err := unmarshalJSON(payloadJSON, &c.event.Payload); err != nil {
			return nil, fmt.Errorf("unmarshaling payload: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}

	// RETURNING does not guarantee order.
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })

	events := make([]domain.OutboxEvent, len(out))
	for i := range out {
		events[i] = out[i].event
	}
	return events, nil
}

// Pending returns how many events are waiting for delivery.
func (o *outbox) Pending(ctx context.Context) (int, error) {
	var n int
	if err := o.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM outbox WHERE dispatched_at IS NULL").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting pending events: %w", err)
	}
	return n, nil
}
