package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// Crawler fetches the pages of one registered domain.
// It does not apply the recrawl gate; the scheduler does.
type Crawler interface {
	// Crawl walks the domain up to the registration's depth and returns at
	// most maxPages pages. Per-page fetch errors are skipped; an error is
	// returned only when nothing could be fetched.
	Crawl(ctx context.Context, reg domain.DomainRegistration, maxPages int) ([]domain.CrawlPage, error)
}
