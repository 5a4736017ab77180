package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// ==================== Job Store ====================

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

const jobColumns = `id, tenant_id, type, status, stats, initiator, trigger_info, error,
	created_at, started_at, ended_at`

// SaveJob creates or updates a job. Terminal jobs are immutable.
func (s *jobStore) SaveJob(ctx context.Context, job *domain.IngestJob) error {
	if job == nil || job.ID == "" || job.TenantID == "" {
		return domain.ErrInvalidInput
	}

	statsJSON, err := marshalJSON(job.Stats)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}
	triggerJSON, err := marshalJSON(job.Trigger)
	if err != nil {
		return fmt.Errorf("marshalling trigger: %w", err)
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current, owner string
	err = tx.QueryRowContext(ctx, "SELECT status, tenant_id FROM ingest_jobs WHERE id = ?", job.ID).
		Scan(&current, &owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("reading job status: %w", err)
	case owner != job.TenantID:
		return fmt.Errorf("job %s: %w", job.ID, domain.ErrTenantMismatch)
	case domain.JobStatus(current).IsTerminal():
		return fmt.Errorf("job %s is %s: %w", job.ID, current, domain.ErrJobTerminal)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO ingest_jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			stats = excluded.stats,
			trigger_info = excluded.trigger_info,
			error = excluded.error,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at
	`, job.ID, job.TenantID, string(job.Type), string(job.Status), statsJSON, job.Initiator,
		triggerJSON, nullString(job.Error), formatTime(job.CreatedAt),
		formatNullableTime(job.StartedAt), formatNullableTime(job.EndedAt))
	if err != nil {
		return fmt.Errorf("saving job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetJob retrieves a job by ID.
func (s *jobStore) GetJob(ctx context.Context, tenantID, id string) (*domain.IngestJob, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM ingest_jobs WHERE tenant_id = ? AND id = ?", tenantID, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return job, err
}

// ListJobs returns a tenant's most recent jobs, newest first.
func (s *jobStore) ListJobs(ctx context.Context, tenantID string, limit int) ([]domain.IngestJob, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+jobColumns+` FROM ingest_jobs
		WHERE tenant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.IngestJob //nolint:prealloc // size unknown from query
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(row rowScanner) (*domain.IngestJob, error) {
	var job domain.IngestJob
	var jobType, status, createdAt string
	var statsJSON, triggerJSON, errMsg, startedAt, endedAt sql.NullString

	if err := row.Scan(&job.ID, &job.TenantID, &jobType, &status, &statsJSON, &job.Initiator,
		&triggerJSON, &errMsg, &createdAt, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}

	job.Type = domain.JobType(jobType)
	job.Status = domain.JobStatus(status)
	job.Error = errMsg.String
	job.CreatedAt = parseTime(createdAt)
	job.StartedAt = parseNullableTime(startedAt)
	job.EndedAt = parseNullableTime(endedAt)

	if err := unmarshalJSON(statsJSON, &job.Stats); err != nil {
		return nil, fmt.Errorf("unmarshaling stats: %w", err)
	}
	if err := unmarshalJSON(triggerJSON, &job.Trigger); err != nil {
		return nil, fmt.Errorf("unmarshaling trigger: %w", err)
	}
	return &job, nil
}

// ==================== Domain Store ====================

// domainStore implements driven.DomainStore.
type domainStore struct {
	store *Store
}

var _ driven.DomainStore = (*domainStore)(nil)

const domainColumns = `id, tenant_id, domain, enabled, crawl_depth, recrawl_hours,
	last_crawled_at, created_at, updated_at`

// SaveDomain creates or updates a registration.
func (s *domainStore) SaveDomain(ctx context.Context, reg *domain.DomainRegistration) error {
	if reg == nil || reg.ID == "" || reg.TenantID == "" || reg.Domain == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = now
	}
	if reg.UpdatedAt.IsZero() {
		reg.UpdatedAt = now
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var existingID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM domains WHERE tenant_id = ? AND domain = ?",
		reg.TenantID, reg.Domain).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("checking domain: %w", err)
	case existingID != reg.ID:
		return fmt.Errorf("domain %s: %w", reg.Domain, domain.ErrAlreadyExists)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO domains (`+domainColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			crawl_depth = excluded.crawl_depth,
			recrawl_hours = excluded.recrawl_hours,
			last_crawled_at = excluded.last_crawled_at,
			updated_at = excluded.updated_at
	`, reg.ID, reg.TenantID, reg.Domain, boolToInt(reg.Enabled), reg.CrawlDepth, reg.RecrawlHours,
		formatNullableTime(reg.LastCrawledAt), formatTime(reg.CreatedAt), formatTime(reg.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving domain: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDomain retrieves a registration by tenant and normalised domain.
func (s *domainStore) GetDomain(ctx context.Context, tenantID, domainName string) (*domain.DomainRegistration, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+domainColumns+" FROM domains WHERE tenant_id = ? AND domain = ?", tenantID, domainName)
	reg, err := scanDomain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return reg, err
}

// ListDomains returns all registrations of a tenant.
func (s *domainStore) ListDomains(ctx context.Context, tenantID string) ([]domain.DomainRegistration, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+domainColumns+" FROM domains WHERE tenant_id = ? ORDER BY domain", tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying domains: %w", err)
	}
	defer rows.Close()

	var regs []domain.DomainRegistration //nolint:prealloc // size unknown from query
	for rows.Next() {
		reg, err := scanDomain(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating domains: %w", err)
	}
	return regs, nil
}

// ListTenantsWithEnabledDomains returns tenant IDs having at least one enabled registration.
func (s *domainStore) ListTenantsWithEnabledDomains(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT tenant_id FROM domains WHERE enabled = 1 ORDER BY tenant_id")
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}
	return tenants, nil
}

// DeleteDomain removes a registration.
func (s *domainStore) DeleteDomain(ctx context.Context, tenantID, domainName string) error {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM domains WHERE tenant_id = ? AND domain = ?", tenantID, domainName)
	if err != nil {
		return fmt.Errorf("deleting domain: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanDomain(row rowScanner) (*domain.DomainRegistration, error) {
	var reg domain.DomainRegistration
	var enabled int
	var lastCrawled sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(&reg.ID, &reg.TenantID, &reg.Domain, &enabled, &reg.CrawlDepth,
		&reg.RecrawlHours, &lastCrawled, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning domain: %w", err)
	}

	reg.Enabled = enabled == 1
	reg.LastCrawledAt = parseNullableTime(lastCrawled)
	reg.CreatedAt = parseTime(createdAt)
	reg.UpdatedAt = parseTime(updatedAt)
	return &reg, nil
}

// ==================== Audit Store ====================

// auditStore implements driven.AuditStore.
type auditStore struct {
	store *Store
}

var _ driven.AuditStore = (*auditStore)(nil)

// Record appends an entry.
func (s *auditStore) Record(ctx context.Context, entry *domain.AuditEntry) error {
	if entry == nil || entry.ID == "" || entry.TenantID == "" || entry.Operation == "" {
		return domain.ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	detailsJSON, err := marshalJSON(entry.Details)
	if err != nil {
		return fmt.Errorf("marshalling details: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, tenant_id, document_id, operation, actor, summary, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.TenantID, nullString(entry.DocumentID), string(entry.Operation), entry.Actor,
		entry.Summary, detailsJSON, formatTime(entry.CreatedAt))
	if err != nil {
		return fmt.Errorf("recording audit entry: %w", err)
	}
	return nil
}

// List returns a tenant's most recent entries, newest first.
func (s *auditStore) List(ctx context.Context, tenantID string, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, tenant_id, document_id, operation, actor, summary, details, created_at
		FROM audit_log WHERE tenant_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.AuditEntry
		var docID, detailsJSON sql.NullString
		var op, createdAt string
		if err := rows.Scan(&e.ID, &e.TenantID, &docID, &op, &e.Actor, &e.Summary,
			&detailsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		e.DocumentID = docID.String
		e.Operation = domain.AuditOperation(op)
		e.CreatedAt = parseTime(createdAt)
		if err := unmarshalJSON(detailsJSON, &e.Details); err != nil {
			return nil, fmt.Errorf("unmarshaling details: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log: %w", err)
	}
	return entries, nil
}
