package domain

// Retrieval defaults.
const (
	DefaultMatchCount = 5
	MaxMatchCount     = 50
	DefaultMinScore   = 0.7
)

// SearchQuery is a tenant-scoped similarity query.
type SearchQuery struct {
	// TenantID scopes the query. Required.
	TenantID string

	// Embedding is the query vector.
	Embedding []float32

	// MatchCount caps the number of results.
	MatchCount int

	// MinScore excludes results with lower cosine similarity and is taken
	// literally, zero included. A negative value disables the threshold.
	// Callers that accept an optional threshold resolve it with
	// MinScoreOrDefault.
	MinScore float64
}

// MinScoreOrDefault returns DefaultMinScore when no threshold was supplied.
func MinScoreOrDefault(v *float64) float64 {
	if v == nil {
		return DefaultMinScore
	}
	return *v
}

// Normalise defaults and caps MatchCount and clamps MinScore to [-1, 1].
func (q *SearchQuery) Normalise() {
	if q.MatchCount <= 0 {
		q.MatchCount = DefaultMatchCount
	}
	if q.MatchCount > MaxMatchCount {
		q.MatchCount = MaxMatchCount
	}
	switch {
	case q.MinScore < 0:
		q.MinScore = -1
	case q.MinScore > 1:
		q.MinScore = 1
	}
}

// SearchResult is one retrieved chunk with its parent document.
type SearchResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// DocumentID identifies the parent document.
	DocumentID string

	// Content is the chunk text.
	Content string

	// Score is the cosine similarity to the query.
	Score float64

	// Document is the parent document without content.
	Document Document
}

// SearchResponse wraps results of a text query with its classified intent.
type SearchResponse struct {
	Query   string
	Intent  Intent
	Results []SearchResult
}
