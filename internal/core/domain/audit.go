package domain

import "time"

// AuditOperation names a destructive or state-changing maintenance action.
type AuditOperation string

// Audited operations.
const (
	AuditCorruptionPurge AuditOperation = "corruption_purge"
	AuditDedupRemove     AuditOperation = "dedup_remove"
	AuditForceReprocess  AuditOperation = "force_reprocess"
	AuditRequeue         AuditOperation = "requeue"
	AuditCrawlRun        AuditOperation = "crawl_run"
	AuditEmbeddingRegen  AuditOperation = "embedding_regen"
)

// AuditEntry records what a maintenance operation did and why.
type AuditEntry struct {
	// ID is the unique identifier for the entry.
	ID string

	// TenantID is the organisation the operation touched.
	TenantID string

	// DocumentID is the affected document, if any.
	DocumentID string

	// Operation is the kind of action.
	Operation AuditOperation

	// Actor is the user id or "system".
	Actor string

	// Summary is a one-line description.
	Summary string

	// Details carries operation-specific context.
	Details map[string]any

	// CreatedAt is when the entry was written.
	CreatedAt time.Time
}

// ActorSystem is the actor recorded for scheduled work.
const ActorSystem = "system"
