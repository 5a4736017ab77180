package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure the stores implement the interfaces.
var (
	_ driven.JobStore    = (*JobStore)(nil)
	_ driven.DomainStore = (*DomainStore)(nil)
	_ driven.AuditStore  = (*AuditStore)(nil)
)

const defaultListLimit = 20

// JobStore is an in-memory implementation of driven.JobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.IngestJob
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.IngestJob)}
}

// SaveJob creates or updates a job. Terminal jobs are immutable.
func (s *JobStore) SaveJob(_ context.Context, job *domain.IngestJob) error {
	if job == nil || job.ID == "" || job.TenantID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.jobs[job.ID]; ok {
		if existing.TenantID != job.TenantID {
			return domain.ErrTenantMismatch
		}
		if existing.Status.IsTerminal() {
			return domain.ErrJobTerminal
		}
	}
	stored := *job
	stored.Stats = copyMap(job.Stats)
	stored.Trigger = copyMap(job.Trigger)
	s.jobs[job.ID] = stored
	return nil
}

// GetJob retrieves a job by ID.
func (s *JobStore) GetJob(_ context.Context, tenantID, id string) (*domain.IngestJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok || job.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	job.Stats = copyMap(job.Stats)
	job.Trigger = copyMap(job.Trigger)
	return &job, nil
}

// ListJobs returns a tenant's most recent jobs, newest first.
func (s *JobStore) ListJobs(_ context.Context, tenantID string, limit int) ([]domain.IngestJob, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	var jobs []domain.IngestJob
	for id := range s.jobs {
		job := s.jobs[id]
		if job.TenantID == tenantID {
			job.Stats = copyMap(job.Stats)
			job.Trigger = copyMap(job.Trigger)
			jobs = append(jobs, job)
		}
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].CreatedAt.Equal(jobs[j].CreatedAt) {
			return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
		}
		return jobs[i].ID > jobs[j].ID
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// DomainStore is an in-memory implementation of driven.DomainStore.
type DomainStore struct {
	mu      sync.RWMutex
	domains map[string]domain.DomainRegistration
}

// NewDomainStore creates a new in-memory domain store.
func NewDomainStore() *DomainStore {
	return &DomainStore{domains: make(map[string]domain.DomainRegistration)}
}

func domainKey(tenantID, domainName string) string {
	return tenantID + "\x00" + domainName
}

// SaveDomain creates or updates a registration.
func (s *DomainStore) SaveDomain(_ context.Context, reg *domain.DomainRegistration) error {
	if reg == nil || reg.ID == "" || reg.TenantID == "" || reg.Domain == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domainKey(reg.TenantID, reg.Domain)
	if existing, ok := s.domains[key]; ok && existing.ID != reg.ID {
		return domain.ErrAlreadyExists
	}
	// A rename moves the registration to its new key.
	for k := range s.domains {
		if s.domains[k].ID == reg.ID && k != key {
			delete(s.domains, k)
		}
	}
	s.domains[key] = *reg
	return nil
}

// GetDomain retrieves a registration by tenant and domain.
func (s *DomainStore) GetDomain(_ context.Context, tenantID, domainName string) (*domain.DomainRegistration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.domains[domainKey(tenantID, domainName)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &reg, nil
}

// ListDomains returns a tenant's registrations ordered by domain.
func (s *DomainStore) ListDomains(_ context.Context, tenantID string) ([]domain.DomainRegistration, error) {
	s.mu.RLock()
	var regs []domain.DomainRegistration
	for k := range s.domains {
		if s.domains[k].TenantID == tenantID {
			regs = append(regs, s.domains[k])
		}
	}
	s.mu.RUnlock()
	sort.Slice(regs, func(i, j int) bool { return regs[i].Domain < regs[j].Domain })
	return regs, nil
}

// ListTenantsWithEnabledDomains returns tenants having an enabled registration, sorted.
func (s *DomainStore) ListTenantsWithEnabledDomains(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var tenants []string
	for k := range s.domains {
		reg := s.domains[k]
		if reg.Enabled && !seen[reg.TenantID] {
			seen[reg.TenantID] = true
			tenants = append(tenants, reg.TenantID)
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}

// DeleteDomain removes a registration.
func (s *DomainStore) DeleteDomain(_ context.Context, tenantID, domainName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domainKey(tenantID, domainName)
	if _, ok := s.domains[key]; !ok {
		return domain.ErrNotFound
	}
	delete(s.domains, key)
	return nil
}

// AuditStore is an in-memory implementation of driven.AuditStore.
type AuditStore struct {
	mu      sync.RWMutex
	entries []domain.AuditEntry
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

// Record appends an entry.
func (s *AuditStore) Record(_ context.Context, entry *domain.AuditEntry) error {
	if entry == nil || entry.ID == "" || entry.TenantID == "" || entry.Operation == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	stored.Details = copyMap(entry.Details)
	s.entries = append(s.entries, stored)
	return nil
}

// List returns a tenant's entries, newest first.
func (s *AuditStore) List(_ context.Context, tenantID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.AuditEntry
	for i := len(s.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if s.entries[i].TenantID == tenantID {
			result = append(result, s.entries[i])
		}
	}
	return result, nil
}

// All returns every recorded entry in insertion order.
func (s *AuditStore) All() []domain.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditEntry(nil), s.entries...)
}
