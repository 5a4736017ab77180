package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// JobStore persists ingest jobs.
type JobStore interface {
	// SaveJob creates or updates a job. Updating a job that is already
	// terminal returns domain.ErrJobTerminal.
	SaveJob(ctx context.Context, job *domain.IngestJob) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, tenantID, id string) (*domain.IngestJob, error)

	// ListJobs returns a tenant's most recent jobs, newest first.
	ListJobs(ctx context.Context, tenantID string, limit int) ([]domain.IngestJob, error)
}

// DomainStore persists crawl domain registrations.
type DomainStore interface {
	// SaveDomain creates or updates a registration. A second registration
	// for the same (tenant, domain) under a different ID returns
	// domain.ErrAlreadyExists.
	SaveDomain(ctx context.Context, reg *domain.DomainRegistration) error

	// GetDomain retrieves a registration by tenant and normalised domain.
	GetDomain(ctx context.Context, tenantID, domainName string) (*domain.DomainRegistration, error)

	// ListDomains returns all registrations of a tenant.
	ListDomains(ctx context.Context, tenantID string) ([]domain.DomainRegistration, error)

	// ListTenantsWithEnabledDomains returns tenant IDs having at least one enabled registration.
	ListTenantsWithEnabledDomains(ctx context.Context) ([]string, error)

	// DeleteDomain removes a registration.
	DeleteDomain(ctx context.Context, tenantID, domainName string) error
}

// AuditStore persists audit entries.
type AuditStore interface {
	// Record appends an entry.
	Record(ctx context.Context, entry *domain.AuditEntry) error

	// List returns a tenant's most recent entries, newest first.
	List(ctx context.Context, tenantID string, limit int) ([]domain.AuditEntry, error)
}
