// Package postprocessors turns extracted document text into stored chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Pipeline runs a document's extracted text through its stages in order
// and returns chunks scoped to the document and its tenant.
type Pipeline struct {
	stages []driven.PostProcessor
}

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// NewPipeline creates a pipeline running stages in the given order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process runs doc through every stage. The first stage receives nil and
// creates chunks; later stages filter or rewrite them.
//
// Every returned chunk carries doc's ID and tenant. A stage emitting a chunk
// scoped to another document or tenant fails the run with
// domain.ErrTenantMismatch. Positions are dense and start at zero.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil: %w", domain.ErrInvalidInput)
	}
	if doc.ID == "" || doc.TenantID == "" {
		return nil, fmt.Errorf("document id and tenant are required: %w", domain.ErrInvalidInput)
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		before := len(chunks)
		var err error
		chunks, err = stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		logger.Debug("pipeline: %s on %s: %d -> %d chunks", stage.Name(), doc.ID, before, len(chunks))
	}

	for i := range chunks {
		c := &chunks[i]
		if c.TenantID == "" {
			c.TenantID = doc.TenantID
		}
		if c.DocumentID == "" {
			c.DocumentID = doc.ID
		}
		if c.TenantID != doc.TenantID || c.DocumentID != doc.ID {
			return nil, fmt.Errorf("chunk %d scoped to %s/%s: %w", i, c.TenantID, c.DocumentID, domain.ErrTenantMismatch)
		}
		c.Position = i
	}
	return chunks, nil
}

// Add appends a stage.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Stages returns the stage names in run order.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
