package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown mime type or provider.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrUnauthorized indicates a missing or mismatched shared secret.
	ErrUnauthorized = errors.New("unauthorized")

	// Pipeline Errors.

	// ErrInvalidTransition indicates a document status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrExtraction indicates content could not be turned into chunks.
	// Documents failing with it end in StatusFailed.
	ErrExtraction = errors.New("extraction failed")

	// ErrStorage indicates the source object could not be located or moved.
	// Documents failing with it end in StatusError.
	ErrStorage = errors.New("storage failure")

	// ErrNoEmbeddedChunks indicates completion was attempted without any embedded chunk.
	ErrNoEmbeddedChunks = errors.New("no embedded chunks")

	// ErrTenantMismatch indicates a chunk whose tenant differs from its document.
	ErrTenantMismatch = errors.New("tenant mismatch")

	// ErrDimensionMismatch indicates an embedding of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrRequeueLimit indicates a document was requeued too often without completing.
	ErrRequeueLimit = errors.New("requeue limit reached")

	// ErrJobTerminal indicates an attempt to modify a finished ingest job.
	ErrJobTerminal = errors.New("ingest job is terminal")

	// Provider Errors.

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrCrawlerUnavailable indicates no crawler is configured.
	ErrCrawlerUnavailable = errors.New("crawler unavailable")
)
