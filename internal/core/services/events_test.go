package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/storage/memory"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []domain.OutboxEvent
	failType  domain.EventType
}

func (s *recordingSink) Deliver(_ context.Context, event domain.OutboxEvent) error {
	if event.Type == s.failType {
		return errors.New("receiver returned 502")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, event)
	return nil
}

func TestEventDispatcher_DeliversOnce(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutbox()
	publish(ctx, outbox, "org-1", domain.EventDocumentCompleted, map[string]any{"document_id": "d1"})
	publish(ctx, outbox, "org-1", domain.EventDocumentFailed, map[string]any{"document_id": "d2"})
	sink := &recordingSink{}
	d := NewEventDispatcher(outbox, sink)

	n, err := d.Dispatch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, sink.delivered, 2)
	assert.Equal(t, domain.EventDocumentCompleted, sink.delivered[0].Type)
	assert.Equal(t, "d1", sink.delivered[0].Payload["document_id"])

	again, err := d.Dispatch(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, again)
	assert.Len(t, sink.delivered, 2)
}

func TestEventDispatcher_FailedDeliveryIsNotRetried(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutbox()
	publish(ctx, outbox, "org-1", domain.EventCrawlFailed, nil)
	publish(ctx, outbox, "org-1", domain.EventCrawlCompleted, nil)
	sink := &recordingSink{failType: domain.EventCrawlFailed}

	n, err := NewEventDispatcher(outbox, sink).Dispatch(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, pending)
}

func TestEventDispatcher_RespectsLimit(t *testing.T) {
	ctx := context.Background()
	outbox := memory.NewOutbox()
	for range 3 {
		publish(ctx, outbox, "org-1", domain.EventDocumentRequeued, nil)
	}

	n, err := NewEventDispatcher(outbox, nil).Dispatch(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	pending, err := outbox.Pending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)
}

func TestEventDispatcher_NilOutbox(t *testing.T) {
	n, err := NewEventDispatcher(nil, nil).Dispatch(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	publish(context.Background(), nil, "org-1", domain.EventCrawlCompleted, nil)
}
