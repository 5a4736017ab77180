package driving

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// RetrievalService serves tenant-scoped similarity search.
type RetrievalService interface {
	// Search ranks a tenant's chunks against a query embedding.
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)

	// SearchText embeds text, classifies its intent and searches.
	SearchText(ctx context.Context, tenantID, text string, matchCount int, minScore float64) (*domain.SearchResponse, error)
}
