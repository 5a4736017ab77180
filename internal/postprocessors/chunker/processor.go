// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// softBreakWindow is the fraction of a chunk, from its end, searched for a
// whitespace boundary before cutting mid-word.
const softBreakWindow = 5

// Processor splits document content into fixed-size chunks.
// Sizes are counted in runes so multi-byte text is never split mid-character.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	content := []rune(doc.Content)
	contentLen := len(content)

	estimatedChunks := (contentLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end >= contentLen {
			end = contentLen
		} else {
			end = p.softBreak(content, start, end)
		}

		text := strings.TrimSpace(string(content[start:end]))
		if text != "" {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				TenantID:   doc.TenantID,
				Content:    text,
				Position:   position,
				Metadata:   make(map[string]any),
			})
			position++
		}

		if end == contentLen {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks, nil
}

// softBreak moves end back to the last whitespace inside the final part of
// the window, keeping words whole where possible.
func (p *Processor) softBreak(content []rune, start, end int) int {
	limit := end - p.chunkSize/softBreakWindow
	if limit <= start {
		return end
	}
	for i := end; i > limit; i-- {
		if unicode.IsSpace(content[i-1]) {
			return i
		}
	}
	return end
}
