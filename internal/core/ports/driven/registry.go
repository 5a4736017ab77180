package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// NormaliserRegistry routes a stored upload or crawled page to the extractor
// for its MIME type. An unregistered type yields domain.ErrUnsupportedType,
// which processing records as an extraction failure.
type NormaliserRegistry interface {
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
	Register(normaliser Normaliser)
	// SupportedMIMETypes is sorted.
	SupportedMIMETypes() []string
}
