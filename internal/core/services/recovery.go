package services

import (
	"context"
	"fmt"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/postprocessors/corruption"
)

// Ensure CorruptionRecovery implements the interface.
var _ driving.CorruptionRecovery = (*CorruptionRecovery)(nil)

// CorruptionRecovery purges stored chunks damaged by bad extraction.
type CorruptionRecovery struct {
	registry *DocumentRegistry
	docs     driven.DocumentStore
	chunks   driven.ChunkStore
	audit    driven.AuditStore
}

// NewCorruptionRecovery creates a corruption recovery service.
func NewCorruptionRecovery(
	registry *DocumentRegistry,
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	audit driven.AuditStore,
) *CorruptionRecovery {
	return &CorruptionRecovery{registry: registry, docs: docs, chunks: chunks, audit: audit}
}

// ScanDocument purges corrupted chunks of one document.
func (c *CorruptionRecovery) ScanDocument(ctx context.Context, tenantID, documentID, actor string) (*domain.RecoveryReport, error) {
	if tenantID == "" || documentID == "" {
		return nil, domain.ErrInvalidInput
	}
	doc, err := c.docs.GetDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	report := &domain.RecoveryReport{TenantID: tenantID}
	if err := c.scan(ctx, doc, actor, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ScanTenant purges corrupted chunks of every document of a tenant.
// A document failing is recorded in the report and the scan continues.
func (c *CorruptionRecovery) ScanTenant(ctx context.Context, tenantID, actor string) (*domain.RecoveryReport, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	docs, err := c.docs.ListDocuments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	report := &domain.RecoveryReport{TenantID: tenantID}
	for i := range docs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := c.scan(ctx, &docs[i], actor, report); err != nil {
			report.Failures = append(report.Failures, domain.ItemFailure{ID: docs[i].ID, Error: err.Error()})
		}
	}
	logger.Info("corruption scan %s: %d documents, %d chunks purged, %d reset",
		tenantID, report.DocumentsScanned, report.ChunksPurged, report.DocumentsReset)
	return report, nil
}

func (c *CorruptionRecovery) scan(ctx context.Context, doc *domain.Document, actor string, report *domain.RecoveryReport) error {
	chunks, err := c.chunks.GetChunks(ctx, doc.TenantID, doc.ID)
	if err != nil {
		return fmt.Errorf("load chunks: %w", err)
	}
	report.DocumentsScanned++
	report.ChunksScanned += len(chunks)

	recovery := domain.DocumentRecovery{
		DocumentID:    doc.ID,
		Title:         doc.Title,
		ChunksScanned: len(chunks),
		Reasons:       make(map[string]int),
	}
	var corrupted []string
	for i := range chunks {
		if v := corruption.Detect(chunks[i].Content); v.Corrupted {
			corrupted = append(corrupted, chunks[i].ID)
			recovery.Reasons[string(v.Reason)]++
		}
	}
	if len(corrupted) == 0 {
		recovery.Remaining = len(chunks)
		report.Documents = append(report.Documents, recovery)
		return nil
	}

	purged, err := c.chunks.DeleteChunksByID(ctx, doc.TenantID, corrupted)
	if err != nil {
		return fmt.Errorf("purge chunks: %w", err)
	}
	recovery.Purged = purged
	report.ChunksPurged += purged

	remaining, err := c.chunks.CountChunks(ctx, doc.TenantID, doc.ID)
	if err != nil {
		remaining = len(chunks) - purged
	}
	recovery.Remaining = remaining

	if remaining == 0 {
		if _, err := c.registry.ResetToPending(ctx, doc.TenantID, doc.ID); err != nil {
			report.Documents = append(report.Documents, recovery)
			return fmt.Errorf("reset to pending: %w", err)
		}
		recovery.ResetPending = true
		report.DocumentsReset++
	} else if _, err := c.registry.ReconcileChunkCount(ctx, doc.TenantID, doc.ID); err != nil {
		report.Documents = append(report.Documents, recovery)
		return fmt.Errorf("reconcile chunk count: %w", err)
	}
	report.Documents = append(report.Documents, recovery)

	reasons := make(map[string]any, len(recovery.Reasons))
	for k, v := range recovery.Reasons {
		reasons[k] = v
	}
	writeAudit(ctx, c.audit, domain.AuditEntry{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Operation:  domain.AuditCorruptionPurge,
		Actor:      actor,
		Summary:    fmt.Sprintf("purged %d of %d chunks from %q", purged, len(chunks), doc.Title),
		Details: map[string]any{
			"title":           doc.Title,
			"previous_status": string(doc.Status),
			"chunks_scanned":  len(chunks),
			"purged":          purged,
			"remaining":       remaining,
			"reset_pending":   recovery.ResetPending,
			"reasons":         reasons,
		},
	})
	return nil
}
