package domain

import (
	"strings"
	"time"
)

// DocumentStatus is the processing state of a document.
type DocumentStatus string

// Document processing states.
const (
	// StatusPending means the document is waiting for processing.
	StatusPending DocumentStatus = "pending"

	// StatusProcessing means extraction, chunking or embedding is in flight.
	StatusProcessing DocumentStatus = "processing"

	// StatusCompleted means the document has embedded chunks and is searchable.
	StatusCompleted DocumentStatus = "completed"

	// StatusFailed means the content could not be turned into chunks.
	StatusFailed DocumentStatus = "failed"

	// StatusError means the stored object could not be located or moved.
	StatusError DocumentStatus = "error"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for states that end a processing pass.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusError
}

// String returns the string representation.
func (s DocumentStatus) String() string {
	return string(s)
}

// CanTransition reports whether a document may move from s to next.
// Any state may return to pending; that edge belongs to the requeue path.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	if next == StatusPending {
		return true
	}
	switch s {
	case StatusPending, StatusFailed, StatusError, StatusCompleted:
		return next == StatusProcessing
	case StatusProcessing:
		return next == StatusCompleted || next == StatusFailed || next == StatusError
	default:
		return false
	}
}

// FailureKind distinguishes a bad file from bad plumbing.
type FailureKind string

// Failure kinds.
const (
	// FailureExtraction marks content that could not be chunked. Maps to StatusFailed.
	FailureExtraction FailureKind = "extraction"

	// FailureStorage marks an object that could not be located or moved. Maps to StatusError.
	FailureStorage FailureKind = "storage"
)

// Status returns the document status a failure of this kind leads to.
func (k FailureKind) Status() DocumentStatus {
	if k == FailureStorage {
		return StatusError
	}
	return StatusFailed
}

// Metadata keys written by the pipeline.
const (
	MetaFailureReason    = "failure_reason"
	MetaFailureKind      = "failure_kind"
	MetaRequeueRequestID = "requeue_request_id"
	MetaPathRepair       = "path_repair"
	MetaSourceURL        = "source_url"
	MetaCrawlJobID       = "crawl_job_id"
	MetaEmbeddingModel   = "embedding_model"
	MetaChunksDropped    = "corrupted_chunks_dropped"
	MetaContentHash      = "content_hash"
)

// Document represents one logical source artifact: an uploaded file or a
// crawled page folded into a document.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// TenantID is the owning organisation.
	TenantID string

	// Title is the human-readable title.
	Title string

	// FileName is the canonical file name used in the storage layout.
	FileName string

	// StoragePath is the object path of the stored source file.
	StoragePath string

	// MimeType is the content type of the stored source file.
	MimeType string

	// Content is the extracted text. It is held in memory while the
	// document is processed and is not persisted.
	Content string

	// Status is the processing state.
	Status DocumentStatus

	// TotalChunks equals the live chunk count once Status is completed.
	// It may be stale while pending or processing.
	TotalChunks int

	// RequeueAttempts counts requeues since the last successful completion.
	RequeueAttempts int

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time

	// ProcessedAt is when the document last completed processing.
	// Zero when never processed or after a reset.
	ProcessedAt time.Time
}

// NormalizedTitle lower-cases the title and collapses whitespace.
// Two documents with the same normalized title are duplicates.
func (d *Document) NormalizedTitle() string {
	return NormalizeTitle(d.Title)
}

// SetMeta sets a metadata key, allocating the map if needed.
func (d *Document) SetMeta(key string, value any) {
	if d.Metadata == nil {
		d.Metadata = make(map[string]any)
	}
	d.Metadata[key] = value
}

// NormalizeTitle lower-cases s, collapses runs of whitespace to one space
// and trims the ends.
func NormalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Chunk is one embeddable passage belonging to exactly one document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// TenantID is denormalised from the parent for scoped queries.
	// It must equal the parent document's TenantID.
	TenantID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Embedding is the vector representation for semantic search.
	// Either a full vector or nil.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs.
	Metadata map[string]any
}

// HasEmbedding returns true when the chunk carries a vector.
func (c *Chunk) HasEmbedding() bool {
	return len(c.Embedding) > 0
}
