package driven

import "context"

// VectorIndex provides tenant-scoped similarity search over chunk embeddings.
// Implementations must be safe to call concurrently with ingestion.
type VectorIndex interface {
	// Search returns at most k chunks of tenantID whose cosine similarity to
	// query is at least minScore, ordered by similarity descending.
	// Chunks without embeddings are ignored; no embeddings yields an empty slice.
	Search(ctx context.Context, tenantID string, query []float32, k int, minScore float64) ([]VectorHit, error)
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Similarity is the cosine similarity score.
	Similarity float64
}
