package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// PostProcessor is one stage between text extraction and chunk storage.
// The first stage (the chunker) receives nil chunks and splits doc.Content;
// later stages such as the corruption filter drop or rewrite chunks.
type PostProcessor interface {
	Name() string
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline turns an extracted document into storable chunks.
// Returned chunks carry the document's tenant and ID with dense positions.
type PostProcessorPipeline interface {
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}
