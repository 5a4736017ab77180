package driving

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// Deduplicator removes documents with equivalent normalised titles.
type Deduplicator interface {
	// CleanDocument deduplicates the title group containing documentID.
	CleanDocument(ctx context.Context, tenantID, documentID, actor string) (*domain.CleanupReport, error)

	// CleanTenant deduplicates every title group of a tenant.
	CleanTenant(ctx context.Context, tenantID, actor string) (*domain.CleanupReport, error)
}

// CorruptionRecovery purges corrupted chunks.
type CorruptionRecovery interface {
	// ScanDocument purges corrupted chunks of one document.
	ScanDocument(ctx context.Context, tenantID, documentID, actor string) (*domain.RecoveryReport, error)

	// ScanTenant purges corrupted chunks of every document of a tenant.
	ScanTenant(ctx context.Context, tenantID, actor string) (*domain.RecoveryReport, error)
}

// EmbeddingRegenerator computes missing or outdated chunk embeddings.
type EmbeddingRegenerator interface {
	// Regenerate embeds a tenant's chunks in the given mode.
	Regenerate(ctx context.Context, tenantID string, mode domain.EmbeddingMode, actor string) (*domain.EmbeddingReport, error)

	// Backfill embeds missing chunks for every tenant that has documents.
	Backfill(ctx context.Context, tenantIDs []string) ([]domain.EmbeddingReport, error)
}

// RequeueRequest asks for a document to be returned to pending and reprocessed.
type RequeueRequest struct {
	TenantID   string
	DocumentID string

	// Force bypasses the requeue attempt limit.
	Force bool

	// Actor is recorded in the audit entry.
	Actor string
}

// RequeueOrchestrator resets stuck documents, repairs their storage path and
// re-triggers processing.
type RequeueOrchestrator interface {
	// Requeue runs every step even if an earlier one failed.
	Requeue(ctx context.Context, req RequeueRequest) (*domain.RequeueResult, error)
}
