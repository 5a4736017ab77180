package domain

import "time"

// EventType names a post-commit notification.
type EventType string

// Outbox event types.
const (
	EventDocumentCompleted EventType = "document.completed"
	EventDocumentFailed    EventType = "document.failed"
	EventDocumentRequeued  EventType = "document.requeued"
	EventCrawlCompleted    EventType = "crawl.completed"
	EventCrawlFailed       EventType = "crawl.failed"
)

// OutboxEvent is a notification recorded after a state change and
// delivered later by the dispatcher. Delivery is at-most-once: an event is
// marked dispatched before it is sent.
type OutboxEvent struct {
	// ID is the unique identifier for the event.
	ID string

	// TenantID is the organisation the event belongs to.
	TenantID string

	// Type is the kind of event.
	Type EventType

	// Payload is the JSON-serialisable body.
	Payload map[string]any

	// CreatedAt is when the event was recorded.
	CreatedAt time.Time

	// DispatchedAt is when the event was claimed for delivery. Zero while pending.
	DispatchedAt time.Time
}
