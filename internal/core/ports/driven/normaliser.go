package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// Normaliser extracts plain text from a stored source file.
// Each normaliser handles specific MIME types (e.g., HTML, DOCX).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// MIME-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts the title and text of a raw document.
	// Content that cannot be decoded returns an error wrapping domain.ErrExtraction.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Title is the extracted title. Empty keeps the registered title.
	Title string

	// Content is the extracted text.
	Content string
}
