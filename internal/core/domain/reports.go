package domain

// ItemFailure is one per-item error inside a batch report.
type ItemFailure struct {
	// ID is the document, chunk or tenant the failure belongs to.
	ID string

	// Error is the failure message.
	Error string
}

// DuplicateRemoval records one dedup decision.
type DuplicateRemoval struct {
	Title         string
	KeptID        string
	RemovedID     string
	KeptChunks    int
	RemovedChunks int
}

// CleanupReport summarises a deduplication run.
type CleanupReport struct {
	TenantID      string
	DuplicateSets int
	TotalCleaned  int
	Removals      []DuplicateRemoval
	Failures      []ItemFailure
}

// DocumentRecovery records the corruption purge for one document.
type DocumentRecovery struct {
	DocumentID    string
	Title         string
	ChunksScanned int
	Purged        int
	Remaining     int
	Reasons       map[string]int
	ResetPending  bool
}

// RecoveryReport summarises a corruption scan.
type RecoveryReport struct {
	TenantID         string
	DocumentsScanned int
	ChunksScanned    int
	ChunksPurged     int
	DocumentsReset   int
	Documents        []DocumentRecovery
	Failures         []ItemFailure
}

// EmbeddingMode selects which chunks an embedding run touches.
type EmbeddingMode string

// Embedding modes.
const (
	// EmbedMissingOnly embeds chunks without a vector. The default.
	EmbedMissingOnly EmbeddingMode = "missing_only"

	// EmbedForceAll recomputes every chunk of the tenant.
	EmbedForceAll EmbeddingMode = "force_all"
)

// EmbeddingReport summarises an embedding run.
type EmbeddingReport struct {
	TenantID string
	Mode     EmbeddingMode
	Total    int
	Embedded int
	Skipped  int
	Failed   int
	Batches  int
	Failures []ItemFailure
}

// TenantCrawlResult is the outcome of one tenant inside a crawl run.
type TenantCrawlResult struct {
	TenantID string
	JobID    string
	Status   JobStatus
	Domains  int
	Pages    int
	Chunks   int
	Error    string
}

// CrawlRunReport summarises a nightly or manual crawl run.
type CrawlRunReport struct {
	TenantsSelected int
	JobsCreated     int
	Succeeded       int
	Failed          int
	Tenants         []TenantCrawlResult
}

// ProcessResult is the outcome of processing one document.
type ProcessResult struct {
	DocumentID string
	Status     DocumentStatus
	Chunks     int
	Embedded   int
	Dropped    int
	Skipped    bool
	Error      string
}

// RequeueResult reports each requeue step so callers can retry specific ones.
type RequeueResult struct {
	DocumentID    string
	RequestID     string
	ChunksDeleted int
	PathRepair    PathRepairOutcome
	StoragePath   string
	Process       *ProcessResult
	StepErrors    map[string]string
}

// OK returns true when every step succeeded.
func (r *RequeueResult) OK() bool {
	return len(r.StepErrors) == 0
}
