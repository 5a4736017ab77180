package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure DocumentRegistry implements the interface.
var _ driving.DocumentRegistry = (*DocumentRegistry)(nil)

// DocumentRegistry owns document records and their status transitions.
type DocumentRegistry struct {
	docs    driven.DocumentStore
	chunks  driven.ChunkStore
	objects driven.ObjectStore
	audit   driven.AuditStore
	outbox  driven.Outbox
	now     func() time.Time
}

// NewDocumentRegistry creates a document registry. audit and outbox may be nil.
func NewDocumentRegistry(
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	objects driven.ObjectStore,
	audit driven.AuditStore,
	outbox driven.Outbox,
) *DocumentRegistry {
	return &DocumentRegistry{
		docs:    docs,
		chunks:  chunks,
		objects: objects,
		audit:   audit,
		outbox:  outbox,
		now:     time.Now,
	}
}

// Register writes the file to its canonical path and records the document
// in pending. With req.DocumentID set, the existing document is refreshed:
// its chunks are purged and it returns to pending. A new document whose
// canonical path already belongs to another document fails with
// domain.ErrAlreadyExists and nothing is written.
func (r *DocumentRegistry) Register(ctx context.Context, req driving.RegisterRequest) (*domain.Document, error) {
	fileName := domain.SanitizeFileName(req.FileName)
	if req.TenantID == "" || fileName == "" {
		return nil, domain.ErrInvalidInput
	}

	now := r.now()
	var doc *domain.Document
	if req.DocumentID != "" {
		existing, err := r.docs.GetDocument(ctx, req.TenantID, req.DocumentID)
		if err != nil {
			return nil, err
		}
		doc = existing
	} else {
		doc = &domain.Document{
			ID:        uuid.New().String(),
			TenantID:  req.TenantID,
			FileName:  fileName,
			CreatedAt: now,
		}
	}

	storagePath := domain.CanonicalPath(doc.TenantID, doc.FileName)
	if req.DocumentID == "" {
		owner, err := r.pathOwner(ctx, doc.TenantID, storagePath)
		if err != nil {
			return nil, err
		}
		if owner != nil {
			return nil, fmt.Errorf("%s is stored by document %s, re-upload to that document instead: %w",
				fileName, owner.ID, domain.ErrAlreadyExists)
		}
	}
	if err := r.objects.Put(ctx, storagePath, req.Content, req.MimeType); err != nil {
		return nil, fmt.Errorf("store %s: %w: %w", storagePath, domain.ErrStorage, err)
	}

	if req.DocumentID != "" {
		if _, err := r.chunks.DeleteChunks(ctx, doc.TenantID, doc.ID); err != nil {
			return nil, fmt.Errorf("purge chunks of %s: %w", doc.ID, err)
		}
	}

	if req.Title != "" {
		doc.Title = req.Title
	} else if doc.Title == "" {
		doc.Title = doc.FileName
	}
	doc.StoragePath = storagePath
	doc.MimeType = req.MimeType
	doc.Status = domain.StatusPending
	doc.TotalChunks = 0
	doc.ProcessedAt = time.Time{}
	doc.UpdatedAt = now
	for k, v := range req.Metadata {
		doc.SetMeta(k, v)
	}

	if err := r.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// pathOwner returns the tenant document whose source object lives at, or
// would be repaired to, storagePath.
func (r *DocumentRegistry) pathOwner(ctx context.Context, tenantID, storagePath string) (*domain.Document, error) {
	docs, err := r.docs.ListDocuments(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if docs[i].StoragePath == storagePath || domain.CanonicalPath(tenantID, docs[i].FileName) == storagePath {
			return &docs[i], nil
		}
	}
	return nil, nil
}

// Get retrieves a document.
func (r *DocumentRegistry) Get(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	if tenantID == "" || id == "" {
		return nil, domain.ErrInvalidInput
	}
	return r.docs.GetDocument(ctx, tenantID, id)
}

// List returns a tenant's documents.
func (r *DocumentRegistry) List(ctx context.Context, tenantID string) ([]domain.Document, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return r.docs.ListDocuments(ctx, tenantID)
}

// BeginProcessing moves a document to processing.
func (r *DocumentRegistry) BeginProcessing(
	ctx context.Context, tenantID, id string, force bool,
) (*domain.Document, bool, error) {
	doc, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, false, err
	}

	if doc.Status == domain.StatusProcessing && !force {
		return doc, false, nil
	}
	if doc.Status != domain.StatusProcessing && !doc.Status.CanTransition(domain.StatusProcessing) {
		return nil, false, fmt.Errorf("%s -> %s: %w", doc.Status, domain.StatusProcessing, domain.ErrInvalidTransition)
	}

	if force {
		purged, err := r.chunks.DeleteChunks(ctx, tenantID, id)
		if err != nil {
			return nil, false, fmt.Errorf("purge chunks of %s: %w", id, err)
		}
		doc.TotalChunks = 0
		writeAudit(ctx, r.audit, domain.AuditEntry{
			TenantID:   tenantID,
			DocumentID: id,
			Operation:  domain.AuditForceReprocess,
			Summary:    fmt.Sprintf("force reprocess purged %d chunks", purged),
			Details: map[string]any{
				"previous_status": string(doc.Status),
				"chunks_purged":   purged,
			},
		})
	}

	doc.Status = domain.StatusProcessing
	doc.UpdatedAt = r.now()
	if err := r.docs.SaveDocument(ctx, doc); err != nil {
		if force {
			r.reconcile(ctx, tenantID, id)
		}
		return nil, false, fmt.Errorf("save document: %w", err)
	}
	return doc, true, nil
}

// Complete moves a processing document to completed.
func (r *DocumentRegistry) Complete(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	doc, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusProcessing {
		return nil, fmt.Errorf("%s -> %s: %w", doc.Status, domain.StatusCompleted, domain.ErrInvalidTransition)
	}

	embedded, err := r.chunks.CountEmbedded(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("count embedded chunks: %w", err)
	}
	if embedded == 0 {
		return nil, fmt.Errorf("complete %s: %w", id, domain.ErrNoEmbeddedChunks)
	}
	total, err := r.chunks.CountChunks(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	now := r.now()
	doc.Status = domain.StatusCompleted
	doc.TotalChunks = total
	doc.ProcessedAt = now
	doc.UpdatedAt = now
	doc.RequeueAttempts = 0
	delete(doc.Metadata, domain.MetaFailureReason)
	delete(doc.Metadata, domain.MetaFailureKind)

	if err := r.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	publish(ctx, r.outbox, tenantID, domain.EventDocumentCompleted, map[string]any{
		"document_id":  id,
		"title":        doc.Title,
		"total_chunks": total,
		"embedded":     embedded,
	})
	return doc, nil
}

// Fail moves a processing document to failed or error.
func (r *DocumentRegistry) Fail(
	ctx context.Context, tenantID, id string, kind domain.FailureKind, cause error,
) (*domain.Document, error) {
	doc, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	next := kind.Status()
	if !doc.Status.CanTransition(next) {
		return nil, fmt.Errorf("%s -> %s: %w", doc.Status, next, domain.ErrInvalidTransition)
	}

	reason := "unknown failure"
	if cause != nil {
		reason = cause.Error()
	}
	doc.Status = next
	doc.UpdatedAt = r.now()
	doc.SetMeta(domain.MetaFailureReason, reason)
	doc.SetMeta(domain.MetaFailureKind, string(kind))

	if err := r.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Warn("document %s %s: %s", id, next, reason)
	publish(ctx, r.outbox, tenantID, domain.EventDocumentFailed, map[string]any{
		"document_id": id,
		"title":       doc.Title,
		"status":      string(next),
		"kind":        string(kind),
		"reason":      reason,
	})
	return doc, nil
}

// ResetToPending purges a document's chunks and returns it to pending.
// Chunks are deleted before the document is updated; if the update fails the
// chunk count is reconciled from the store.
func (r *DocumentRegistry) ResetToPending(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	doc, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if _, err := r.chunks.DeleteChunks(ctx, tenantID, id); err != nil {
		return nil, fmt.Errorf("purge chunks of %s: %w", id, err)
	}

	doc.Status = domain.StatusPending
	doc.TotalChunks = 0
	doc.ProcessedAt = time.Time{}
	doc.UpdatedAt = r.now()
	if err := r.docs.SaveDocument(ctx, doc); err != nil {
		r.reconcile(ctx, tenantID, id)
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// ReconcileChunkCount re-derives TotalChunks from a live count.
func (r *DocumentRegistry) ReconcileChunkCount(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	doc, err := r.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	count, err := r.chunks.CountChunks(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	if doc.TotalChunks == count {
		return doc, nil
	}
	doc.TotalChunks = count
	doc.UpdatedAt = r.now()
	if err := r.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return doc, nil
}

// reconcile is the best-effort compensation after a failed document update.
func (r *DocumentRegistry) reconcile(ctx context.Context, tenantID, id string) {
	if _, err := r.ReconcileChunkCount(ctx, tenantID, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		logger.Error("reconcile chunk count of %s: %v", id, err)
	}
}
