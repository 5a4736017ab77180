package services

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure RequeueOrchestrator implements the interface.
var _ driving.RequeueOrchestrator = (*RequeueOrchestrator)(nil)

// Requeue step names used in RequeueResult.StepErrors.
const (
	StepDeleteChunks = "delete_chunks"
	StepReset        = "reset"
	StepPathRepair   = "path_repair"
	StepStamp        = "stamp"
	StepProcess      = "process"
)

// RequeueOrchestrator returns stuck documents to pending, moves their file
// to the canonical path and processes them again.
type RequeueOrchestrator struct {
	registry    *DocumentRegistry
	docs        driven.DocumentStore
	chunks      driven.ChunkStore
	objects     driven.ObjectStore
	audit       driven.AuditStore
	outbox      driven.Outbox
	processor   driving.ProcessingService
	maxAttempts int

	retryAttempts  int
	retryBaseDelay time.Duration
	now            func() time.Time
}

// NewRequeueOrchestrator creates a requeue orchestrator. maxAttempts bounds
// requeues without a successful completion; zero or less uses the default of 3.
func NewRequeueOrchestrator(
	registry *DocumentRegistry,
	docs driven.DocumentStore,
	chunks driven.ChunkStore,
	objects driven.ObjectStore,
	audit driven.AuditStore,
	outbox driven.Outbox,
	processor driving.ProcessingService,
	maxAttempts int,
) *RequeueOrchestrator {
	if maxAttempts <= 0 {
		maxAttempts = domain.DefaultSettings().MaxRequeueAttempts
	}
	return &RequeueOrchestrator{
		registry:       registry,
		docs:           docs,
		chunks:         chunks,
		objects:        objects,
		audit:          audit,
		outbox:         outbox,
		processor:      processor,
		maxAttempts:    maxAttempts,
		retryAttempts:  DefaultRetryAttempts,
		retryBaseDelay: DefaultRetryBaseDelay,
		now:            time.Now,
	}
}

// Requeue runs every step even when an earlier one failed; failures are
// collected in the result's StepErrors.
func (o *RequeueOrchestrator) Requeue(ctx context.Context, req driving.RequeueRequest) (*domain.RequeueResult, error) {
	if req.TenantID == "" || req.DocumentID == "" {
		return nil, domain.ErrInvalidInput
	}
	doc, err := o.docs.GetDocument(ctx, req.TenantID, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if !req.Force && doc.RequeueAttempts >= o.maxAttempts {
		return nil, fmt.Errorf("%s requeued %d times without completing: %w",
			doc.ID, doc.RequeueAttempts, domain.ErrRequeueLimit)
	}

	result := &domain.RequeueResult{
		DocumentID: doc.ID,
		RequestID:  uuid.New().String(),
		StepErrors: make(map[string]string),
	}
	stepFailed := func(step string, err error) {
		result.StepErrors[step] = err.Error()
		logger.Warn("requeue %s step %s: %v", doc.ID, step, err)
	}

	// 1. Chunks go first so a failed reset can still be reconciled.
	deleted, err := o.chunks.DeleteChunks(ctx, doc.TenantID, doc.ID)
	if err != nil {
		stepFailed(StepDeleteChunks, err)
	}
	result.ChunksDeleted = deleted

	// 2. Back to pending.
	previous := doc.Status
	doc.Status = domain.StatusPending
	doc.TotalChunks = 0
	doc.ProcessedAt = time.Time{}
	doc.RequeueAttempts++
	doc.UpdatedAt = o.now()
	if err := o.docs.SaveDocument(ctx, doc); err != nil {
		stepFailed(StepReset, err)
		o.registry.reconcile(ctx, doc.TenantID, doc.ID)
	}

	// 3. Path repair.
	outcome, storagePath, err := o.repairPath(ctx, doc)
	if err != nil {
		stepFailed(StepPathRepair, err)
	}
	result.PathRepair = outcome
	result.StoragePath = storagePath

	// 4. Traceability.
	if current, err := o.docs.GetDocument(ctx, doc.TenantID, doc.ID); err == nil {
		doc = current
	}
	doc.StoragePath = storagePath
	doc.SetMeta(domain.MetaRequeueRequestID, result.RequestID)
	doc.SetMeta(domain.MetaPathRepair, string(outcome))
	doc.UpdatedAt = o.now()
	if err := o.docs.SaveDocument(ctx, doc); err != nil {
		stepFailed(StepStamp, err)
	}

	writeAudit(ctx, o.audit, domain.AuditEntry{
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Operation:  domain.AuditRequeue,
		Actor:      req.Actor,
		Summary:    fmt.Sprintf("requeued %q (path %s)", doc.Title, outcome),
		Details: map[string]any{
			"request_id":       result.RequestID,
			"previous_status":  string(previous),
			"chunks_deleted":   deleted,
			"path_repair":      string(outcome),
			"storage_path":     storagePath,
			"requeue_attempts": doc.RequeueAttempts,
			"force":            req.Force,
		},
	})
	publish(ctx, o.outbox, doc.TenantID, domain.EventDocumentRequeued, map[string]any{
		"document_id": doc.ID,
		"request_id":  result.RequestID,
		"path_repair": string(outcome),
	})

	// 5. Processing, retried on transient failures.
	err = RetryWithBackoff(ctx, func() error {
		res, err := o.processor.Process(ctx, doc.TenantID, doc.ID, false)
		if res != nil {
			result.Process = res
		}
		return err
	}, o.retryAttempts, o.retryBaseDelay, isTransient)
	if err != nil {
		stepFailed(StepProcess, err)
	} else if result.Process != nil && result.Process.Error != "" {
		result.StepErrors[StepProcess] = result.Process.Error
	}

	return result, nil
}

// repairPath makes sure the document's file lives at the canonical path.
// It returns the outcome and the path the document should record.
func (o *RequeueOrchestrator) repairPath(ctx context.Context, doc *domain.Document) (domain.PathRepairOutcome, string, error) {
	if doc.FileName == "" && doc.StoragePath != "" {
		doc.FileName = path.Base(doc.StoragePath)
	}
	candidates := domain.CandidatePaths(doc)
	canonical := candidates[0]

	ok, err := o.objects.Exists(ctx, canonical)
	if err != nil {
		return domain.RepairFailed, doc.StoragePath, fmt.Errorf("check %s: %w: %w", canonical, domain.ErrStorage, err)
	}
	if ok {
		return domain.RepairCanonical, canonical, nil
	}

	for _, candidate := range candidates[1:] {
		found, err := o.objects.Exists(ctx, candidate)
		if err != nil {
			logger.Debug("requeue %s: check %s: %v", doc.ID, candidate, err)
			continue
		}
		if !found {
			continue
		}
		if err := o.objects.Copy(ctx, candidate, canonical); err != nil {
			return domain.RepairFailed, candidate, fmt.Errorf("copy %s to %s: %w: %w", candidate, canonical, domain.ErrStorage, err)
		}
		if err := o.objects.Delete(ctx, candidate); err != nil {
			logger.Warn("requeue %s: remove old copy %s: %v", doc.ID, candidate, err)
			return domain.RepairMovedStale, canonical, nil
		}
		logger.Info("requeue %s: moved %s to %s", doc.ID, candidate, canonical)
		return domain.RepairMoved, canonical, nil
	}
	return domain.RepairMissing, doc.StoragePath, nil
}
