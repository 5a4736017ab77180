package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure Deduplicator implements the interface.
var _ driving.Deduplicator = (*Deduplicator)(nil)

// Deduplicator removes documents whose normalised titles collide, keeping
// the best-ranked one of each group.
type Deduplicator struct {
	registry *DocumentRegistry
	docs     driven.DocumentStore
	chunks   driven.ChunkStore
	audit    driven.AuditStore
}

// NewDeduplicator creates a deduplicator.
func NewDeduplicator(
	registry *DocumentRegistry,
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	audit driven.AuditStore,
) *Deduplicator {
	return &Deduplicator{registry: registry, docs: docs, chunks: chunks, audit: audit}
}

// CleanDocument deduplicates the title group containing documentID.
func (d *Deduplicator) CleanDocument(ctx context.Context, tenantID, documentID, actor string) (*domain.CleanupReport, error) {
	if tenantID == "" || documentID == "" {
		return nil, domain.ErrInvalidInput
	}
	target, err := d.docs.GetDocument(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}
	all, err := d.docs.ListDocuments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	key := target.NormalizedTitle()
	var group []domain.Document
	for i := range all {
		if all[i].NormalizedTitle() == key {
			group = append(group, all[i])
		}
	}

	report := &domain.CleanupReport{TenantID: tenantID}
	if key != "" && len(group) > 1 {
		d.cleanGroup(ctx, tenantID, actor, group, report)
	}
	return report, nil
}

// CleanTenant deduplicates every title group of a tenant.
func (d *Deduplicator) CleanTenant(ctx context.Context, tenantID, actor string) (*domain.CleanupReport, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	all, err := d.docs.ListDocuments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var order []string
	groups := make(map[string][]domain.Document)
	for i := range all {
		key := all[i].NormalizedTitle()
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], all[i])
	}

	report := &domain.CleanupReport{TenantID: tenantID}
	for _, key := range order {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if len(groups[key]) > 1 {
			d.cleanGroup(ctx, tenantID, actor, groups[key], report)
		}
	}
	logger.Info("dedup %s: %d sets, %d removed", tenantID, report.DuplicateSets, report.TotalCleaned)
	return report, nil
}

type rankedDocument struct {
	doc    domain.Document
	chunks int
}

// rankGroup orders a group best first: completed, then more live chunks,
// then newer. Ties keep first-seen order.
func (d *Deduplicator) rankGroup(ctx context.Context, tenantID string, group []domain.Document) []rankedDocument {
	ranked := make([]rankedDocument, len(group))
	for i := range group {
		n, err := d.chunks.CountChunks(ctx, tenantID, group[i].ID)
		if err != nil {
			n = group[i].TotalChunks
		}
		ranked[i] = rankedDocument{doc: group[i], chunks: n}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ac, bc := a.doc.Status == domain.StatusCompleted, b.doc.Status == domain.StatusCompleted
		if ac != bc {
			return ac
		}
		if a.chunks != b.chunks {
			return a.chunks > b.chunks
		}
		return a.doc.CreatedAt.After(b.doc.CreatedAt)
	})
	return ranked
}

func (d *Deduplicator) cleanGroup(
	ctx context.Context, tenantID, actor string, group []domain.Document, report *domain.CleanupReport,
) {
	ranked := d.rankGroup(ctx, tenantID, group)
	kept := ranked[0]
	report.DuplicateSets++

	for _, loser := range ranked[1:] {
		removedChunks, err := d.chunks.DeleteChunks(ctx, tenantID, loser.doc.ID)
		if err != nil {
			report.Failures = append(report.Failures, domain.ItemFailure{
				ID: loser.doc.ID, Error: fmt.Sprintf("delete chunks: %v", err),
			})
			continue
		}
		if err := d.docs.DeleteDocument(ctx, tenantID, loser.doc.ID); err != nil {
			d.registry.reconcile(ctx, tenantID, loser.doc.ID)
			report.Failures = append(report.Failures, domain.ItemFailure{
				ID: loser.doc.ID, Error: fmt.Sprintf("delete document: %v", err),
			})
			continue
		}

		removal := domain.DuplicateRemoval{
			Title:         kept.doc.Title,
			KeptID:        kept.doc.ID,
			RemovedID:     loser.doc.ID,
			KeptChunks:    kept.chunks,
			RemovedChunks: removedChunks,
		}
		report.Removals = append(report.Removals, removal)
		report.TotalCleaned++

		writeAudit(ctx, d.audit, domain.AuditEntry{
			TenantID:   tenantID,
			DocumentID: loser.doc.ID,
			Operation:  domain.AuditDedupRemove,
			Actor:      actor,
			Summary:    fmt.Sprintf("removed duplicate of %q", kept.doc.Title),
			Details: map[string]any{
				"kept_id":        kept.doc.ID,
				"kept_chunks":    kept.chunks,
				"removed_title":  loser.doc.Title,
				"removed_status": string(loser.doc.Status),
				"removed_chunks": removedChunks,
			},
		})
	}
}
