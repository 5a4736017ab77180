package driving

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// CrawlService manages domain registrations and crawl runs.
type CrawlService interface {
	// RegisterDomain allow-lists a domain for a tenant.
	RegisterDomain(ctx context.Context, reg domain.DomainRegistration) (*domain.DomainRegistration, error)

	// SetDomainEnabled enables or disables a registration.
	SetDomainEnabled(ctx context.Context, tenantID, domainName string, enabled bool) error

	// ListDomains returns a tenant's registrations.
	ListDomains(ctx context.Context, tenantID string) ([]domain.DomainRegistration, error)

	// RunNightly crawls every tenant with due enabled domains. A tenant
	// failing or timing out never affects the others.
	RunNightly(ctx context.Context, initiator string) (*domain.CrawlRunReport, error)

	// TriggerTenant crawls one tenant, or one of its domains, ignoring the
	// recrawl gate.
	TriggerTenant(ctx context.Context, tenantID, domainName, initiator string) (*domain.TenantCrawlResult, error)

	// Status derives a tenant's crawl state from jobs and documents.
	Status(ctx context.Context, tenantID string) (*domain.CrawlStatus, error)
}

// EventDispatcher delivers outbox events.
type EventDispatcher interface {
	// Dispatch claims and delivers up to limit events and returns how many
	// were delivered successfully.
	Dispatch(ctx context.Context, limit int) (int, error)
}
