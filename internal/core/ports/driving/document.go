package driving

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// RegisterRequest describes a new upload or crawled page.
type RegisterRequest struct {
	// TenantID is the owning organisation. Required.
	TenantID string

	// DocumentID reuses an existing document (crawl refresh). Empty creates one.
	DocumentID string

	// Title is the display title. Defaults to the file name.
	Title string

	// FileName is stored under the canonical path. Required.
	FileName string

	// MimeType is the content type of Content.
	MimeType string

	// Content is the file body written to the object store.
	Content []byte

	// Metadata is merged into the document metadata.
	Metadata map[string]any
}

// DocumentRegistry owns document records and their processing state machine.
type DocumentRegistry interface {
	// Register stores the file at its canonical path and records the
	// document in pending.
	Register(ctx context.Context, req RegisterRequest) (*domain.Document, error)

	// Get retrieves a document.
	Get(ctx context.Context, tenantID, id string) (*domain.Document, error)

	// List returns a tenant's documents.
	List(ctx context.Context, tenantID string) ([]domain.Document, error)

	// BeginProcessing moves a document to processing. A document already
	// processing is left alone and changed is false, unless force is set,
	// in which case its chunks are purged first.
	BeginProcessing(ctx context.Context, tenantID, id string, force bool) (doc *domain.Document, changed bool, err error)

	// Complete moves a processing document to completed. It requires at least
	// one embedded chunk and sets TotalChunks from a live count.
	Complete(ctx context.Context, tenantID, id string) (*domain.Document, error)

	// Fail moves a processing document to failed or error depending on kind.
	Fail(ctx context.Context, tenantID, id string, kind domain.FailureKind, cause error) (*domain.Document, error)

	// ResetToPending purges chunks and returns any document to pending.
	ResetToPending(ctx context.Context, tenantID, id string) (*domain.Document, error)

	// ReconcileChunkCount re-derives TotalChunks from a live count.
	ReconcileChunkCount(ctx context.Context, tenantID, id string) (*domain.Document, error)
}

// ProcessingService runs extraction, chunking, corruption filtering and
// embedding for documents.
type ProcessingService interface {
	// Process runs one document through the pipeline. Failures of the
	// document itself are reflected in the result and its status, not the
	// returned error, which is reserved for request-level problems.
	Process(ctx context.Context, tenantID, documentID string, force bool) (*domain.ProcessResult, error)

	// ProcessPending processes every pending document of a tenant. One
	// document failing never stops the others.
	ProcessPending(ctx context.Context, tenantID string) ([]domain.ProcessResult, error)
}
