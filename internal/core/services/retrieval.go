package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService serves tenant-scoped similarity search. It never writes.
type RetrievalService struct {
	index    driven.VectorIndex
	docs     driven.DocumentStore
	embedder *Embedder
}

// NewRetrievalService creates a retrieval service. embedder may be nil, in
// which case only embedding queries are served.
func NewRetrievalService(index driven.VectorIndex, docs driven.DocumentStore, embedder *Embedder) *RetrievalService {
	return &RetrievalService{index: index, docs: docs, embedder: embedder}
}

// Search returns the tenant's chunks most similar to query.Embedding,
// best first. Results below MinScore are never returned and at most
// MatchCount results are returned.
func (s *RetrievalService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	if query.TenantID == "" || len(query.Embedding) == 0 {
		return nil, domain.ErrInvalidInput
	}
	query.Normalise()

	hits, err := s.index.Search(ctx, query.TenantID, query.Embedding, query.MatchCount, query.MinScore)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(hits))
	parents := make(map[string]*domain.Document)
	for _, hit := range hits {
		if hit.Similarity < query.MinScore {
			continue
		}
		parent, ok := parents[hit.DocumentID]
		if !ok {
			parent, err = s.docs.GetDocument(ctx, query.TenantID, hit.DocumentID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("load document %s: %w", hit.DocumentID, err)
			}
			parents[hit.DocumentID] = parent
		}
		if parent == nil {
			continue
		}
		doc := *parent
		doc.Content = ""
		results = append(results, domain.SearchResult{
			ChunkID:    hit.ChunkID,
			DocumentID: hit.DocumentID,
			Content:    hit.Content,
			Score:      hit.Similarity,
			Document:   doc,
		})
		if len(results) == query.MatchCount {
			break
		}
	}
	return results, nil
}

// SearchText embeds text, classifies its intent and searches.
func (s *RetrievalService) SearchText(
	ctx context.Context, tenantID, text string, matchCount int, minScore float64,
) (*domain.SearchResponse, error) {
	text = strings.TrimSpace(text)
	if tenantID == "" || text == "" {
		return nil, domain.ErrInvalidInput
	}
	if !s.embedder.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vec, err := s.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results, err := s.Search(ctx, domain.SearchQuery{
		TenantID:   tenantID,
		Embedding:  vec,
		MatchCount: matchCount,
		MinScore:   minScore,
	})
	if err != nil {
		return nil, err
	}
	return &domain.SearchResponse{
		Query:   text,
		Intent:  domain.ClassifyIntent(text),
		Results: results,
	}, nil
}
