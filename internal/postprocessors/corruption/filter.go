package corruption

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Filter drops corrupted chunks before they are stored.
// It implements the PostProcessor interface.
type Filter struct{}

var _ driven.PostProcessor = (*Filter)(nil)

// NewFilter creates a corruption filter.
func NewFilter() *Filter {
	return &Filter{}
}

// Name returns the processor name.
func (f *Filter) Name() string {
	return "corruption-filter"
}

// Process keeps clean chunks and renumbers their positions.
func (f *Filter) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	kept := chunks[:0:0]
	dropped := 0
	for _, c := range chunks {
		if v := Detect(c.Content); v.Corrupted {
			dropped++
			logger.Debug("corruption: dropping chunk %d of %s (%s)", c.Position, doc.ID, v.Reason)
			continue
		}
		c.Position = len(kept)
		kept = append(kept, c)
	}
	doc.SetMeta(domain.MetaChunksDropped, dropped)
	return kept, nil
}
