package services

import (
	"context"
	"fmt"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure ProcessingService implements the interface.
var _ driving.ProcessingService = (*ProcessingService)(nil)

// ProcessingService turns a pending document into embedded chunks:
// load, extract, chunk, filter, store, embed, complete.
type ProcessingService struct {
	registry    *DocumentRegistry
	docs        driven.DocumentStore
	chunks      driven.ChunkStore
	objects     driven.ObjectStore
	normalisers driven.NormaliserRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    *Embedder
}

// NewProcessingService creates a processing service.
func NewProcessingService(
	registry *DocumentRegistry,
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	objects driven.ObjectStore,
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder *Embedder,
) *ProcessingService {
	return &ProcessingService{
		registry:    registry,
		docs:        docs,
		chunks:      chunks,
		objects:     objects,
		normalisers: normalisers,
		pipeline:    pipeline,
		embedder:    embedder,
	}
}

// Process runs one document through the pipeline. A document that fails
// ends in failed or error and the result carries the reason. When the
// failure is a transient embedding problem the cause is also returned so
// callers may retry.
func (s *ProcessingService) Process(ctx context.Context, tenantID, documentID string, force bool) (*domain.ProcessResult, error) {
	doc, changed, err := s.registry.BeginProcessing(ctx, tenantID, documentID, force)
	if err != nil {
		return nil, err
	}
	result := &domain.ProcessResult{DocumentID: documentID, Status: doc.Status}
	if !changed {
		result.Skipped = true
		return result, nil
	}

	storagePath := doc.StoragePath
	if storagePath == "" {
		storagePath = domain.CanonicalPath(doc.TenantID, doc.FileName)
	}
	data, err := s.objects.Get(ctx, storagePath)
	if err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureStorage, fmt.Errorf("load %s: %w: %w", storagePath, domain.ErrStorage, err))
	}

	extracted, err := s.normalisers.Normalise(ctx, &domain.RawDocument{
		DocumentID: doc.ID,
		TenantID:   doc.TenantID,
		FileName:   doc.FileName,
		MIMEType:   doc.MimeType,
		Content:    data,
		Metadata:   doc.Metadata,
	})
	if err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureExtraction, fmt.Errorf("extract: %w", err))
	}
	if extracted.Title != "" && (doc.Title == "" || doc.Title == doc.FileName) {
		doc.Title = extracted.Title
	}
	doc.Content = extracted.Content

	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureExtraction, fmt.Errorf("chunk: %w: %w", domain.ErrExtraction, err))
	}
	if dropped, ok := doc.Metadata[domain.MetaChunksDropped].(int); ok {
		result.Dropped = dropped
	}
	if len(chunks) == 0 {
		return s.fail(ctx, tenantID, result, domain.FailureExtraction, fmt.Errorf("no usable chunks: %w", domain.ErrExtraction))
	}

	// Title and pipeline metadata are kept before chunks reference the document.
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureStorage, fmt.Errorf("save document: %w", err))
	}
	if _, err := s.chunks.DeleteChunks(ctx, tenantID, documentID); err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureStorage, fmt.Errorf("purge old chunks: %w", err))
	}
	if err := s.chunks.SaveChunks(ctx, tenantID, chunks); err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureStorage, fmt.Errorf("save chunks: %w", err))
	}
	result.Chunks = len(chunks)

	report, embedErr := s.embedder.EmbedChunks(ctx, tenantID, chunks)
	result.Embedded = report.Embedded
	if report.Embedded == 0 {
		cause := embedErr
		if cause == nil {
			cause = domain.ErrNoEmbeddedChunks
		}
		res, _ := s.fail(ctx, tenantID, result, domain.FailureExtraction, fmt.Errorf("embed: %w", cause))
		if isTransient(cause) {
			return res, cause
		}
		return res, nil
	}
	if s.embedder.ModelName() != "" {
		doc.SetMeta(domain.MetaEmbeddingModel, s.embedder.ModelName())
		doc.Content = ""
		if err := s.docs.SaveDocument(ctx, doc); err != nil {
			logger.Warn("record embedding model for %s: %v", documentID, err)
		}
	}

	completed, err := s.registry.Complete(ctx, tenantID, documentID)
	if err != nil {
		return s.fail(ctx, tenantID, result, domain.FailureExtraction, fmt.Errorf("complete: %w", err))
	}
	result.Status = completed.Status
	result.Chunks = completed.TotalChunks
	return result, nil
}

// fail records a document failure and reports it in result.
func (s *ProcessingService) fail(
	ctx context.Context, tenantID string, result *domain.ProcessResult, kind domain.FailureKind, cause error,
) (*domain.ProcessResult, error) {
	result.Error = cause.Error()
	doc, err := s.registry.Fail(ctx, tenantID, result.DocumentID, kind, cause)
	if err != nil {
		logger.Error("mark %s %s: %v", result.DocumentID, kind.Status(), err)
		return result, nil
	}
	result.Status = doc.Status
	return result, nil
}

// ProcessPending processes every pending document of a tenant.
func (s *ProcessingService) ProcessPending(ctx context.Context, tenantID string) ([]domain.ProcessResult, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	pending, err := s.docs.ListByStatus(ctx, tenantID, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	results := make([]domain.ProcessResult, 0, len(pending))
	for i := range pending {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := s.Process(ctx, tenantID, pending[i].ID, false)
		if res == nil {
			res = &domain.ProcessResult{DocumentID: pending[i].ID, Status: pending[i].Status}
		}
		if err != nil && res.Error == "" {
			res.Error = err.Error()
		}
		results = append(results, *res)
	}
	return results, nil
}
