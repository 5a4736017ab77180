package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure CrawlScheduler implements the interface.
var _ driving.CrawlService = (*CrawlScheduler)(nil)

// statusJobWindow is how many recent jobs Status inspects for a crawl job.
const statusJobWindow = 20

// CrawlScheduler owns domain registrations and runs crawl-and-extract jobs.
type CrawlScheduler struct {
	domains   driven.DomainStore
	jobs      driven.JobStore
	docs      driven.DocumentStore
	registry  driving.DocumentRegistry
	processor driving.ProcessingService
	crawler   driven.Crawler
	audit     driven.AuditStore
	outbox    driven.Outbox
	cfg       domain.CrawlSettings
	now       func() time.Time
}

// NewCrawlScheduler creates a crawl scheduler. crawler may be nil, in which
// case crawl runs fail with domain.ErrCrawlerUnavailable.
func NewCrawlScheduler(
	domains driven.DomainStore,
	jobs driven.JobStore,
	docs driven.DocumentStore,
	registry driving.DocumentRegistry,
	processor driving.ProcessingService,
	crawler driven.Crawler,
	audit driven.AuditStore,
	outbox driven.Outbox,
	cfg domain.CrawlSettings,
) *CrawlScheduler {
	defaults := domain.DefaultSettings().Crawl
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = defaults.MaxPages
	}
	if cfg.TenantTimeout <= 0 {
		cfg.TenantTimeout = defaults.TenantTimeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	return &CrawlScheduler{
		domains:   domains,
		jobs:      jobs,
		docs:      docs,
		registry:  registry,
		processor: processor,
		crawler:   crawler,
		audit:     audit,
		outbox:    outbox,
		cfg:       cfg,
		now:       time.Now,
	}
}

// VerifyCronSecret compares a presented secret with the configured one in
// constant time. An empty configured secret never verifies.
func VerifyCronSecret(configured, presented string) bool {
	if configured == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) == 1
}

// ==================== Domain registry ====================

// RegisterDomain allow-lists a domain for a tenant. Registering an existing
// domain updates its settings in place.
func (s *CrawlScheduler) RegisterDomain(ctx context.Context, reg domain.DomainRegistration) (*domain.DomainRegistration, error) {
	name := domain.NormalizeDomain(reg.Domain)
	if reg.TenantID == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	if reg.CrawlDepth < 0 || reg.RecrawlHours < 0 {
		return nil, fmt.Errorf("negative depth or interval: %w", domain.ErrInvalidInput)
	}
	if reg.CrawlDepth == 0 {
		reg.CrawlDepth = domain.DefaultCrawlDepth
	}
	if reg.RecrawlHours == 0 {
		reg.RecrawlHours = domain.DefaultRecrawlHours
	}

	now := s.now()
	existing, err := s.domains.GetDomain(ctx, reg.TenantID, name)
	switch {
	case err == nil:
		existing.Enabled = reg.Enabled
		existing.CrawlDepth = reg.CrawlDepth
		existing.RecrawlHours = reg.RecrawlHours
		existing.UpdatedAt = now
		reg = *existing
	case errors.Is(err, domain.ErrNotFound):
		reg.ID = uuid.New().String()
		reg.Domain = name
		reg.LastCrawledAt = time.Time{}
		reg.CreatedAt = now
		reg.UpdatedAt = now
	default:
		return nil, fmt.Errorf("load domain: %w", err)
	}

	if err := s.domains.SaveDomain(ctx, &reg); err != nil {
		return nil, fmt.Errorf("save domain: %w", err)
	}
	logger.Info("tenant %s: registered domain %s (enabled=%t depth=%d)", reg.TenantID, reg.Domain, reg.Enabled, reg.CrawlDepth)
	return &reg, nil
}

// SetDomainEnabled enables or disables a registration.
func (s *CrawlScheduler) SetDomainEnabled(ctx context.Context, tenantID, domainName string, enabled bool) error {
	name := domain.NormalizeDomain(domainName)
	if tenantID == "" || name == "" {
		return domain.ErrInvalidInput
	}
	reg, err := s.domains.GetDomain(ctx, tenantID, name)
	if err != nil {
		return err
	}
	if reg.Enabled == enabled {
		return nil
	}
	reg.Enabled = enabled
	reg.UpdatedAt = s.now()
	return s.domains.SaveDomain(ctx, reg)
}

// ListDomains returns a tenant's registrations.
func (s *CrawlScheduler) ListDomains(ctx context.Context, tenantID string) ([]domain.DomainRegistration, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.domains.ListDomains(ctx, tenantID)
}

// ==================== Crawl runs ====================

// RunNightly crawls every tenant with due enabled domains, at most
// cfg.Concurrency tenants at a time, each under its own timeout.
func (s *CrawlScheduler) RunNightly(ctx context.Context, initiator string) (*domain.CrawlRunReport, error) {
	if s.crawler == nil {
		return nil, domain.ErrCrawlerUnavailable
	}
	tenants, err := s.domains.ListTenantsWithEnabledDomains(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	logger.Section("Nightly crawl")
	report := &domain.CrawlRunReport{TenantsSelected: len(tenants)}
	if initiator == "" {
		initiator = "cron"
	}

	var (
		mu      sync.Mutex
		results []domain.TenantCrawlResult
	)
	// A plain group: one tenant failing must not cancel the others.
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)
	for _, tenantID := range tenants {
		g.Go(func() error {
			regs, err := s.dueDomains(ctx, tenantID)
			if err != nil {
				logger.Warn("tenant %s: list domains: %v", tenantID, err)
				mu.Lock()
				results = append(results, domain.TenantCrawlResult{
					TenantID: tenantID,
					Status:   domain.JobFailed,
					Error:    err.Error(),
				})
				mu.Unlock()
				return nil
			}
			if len(regs) == 0 {
				logger.Debug("tenant %s: no domains due", tenantID)
				return nil
			}
			trigger := map[string]any{"schedule": "nightly"}
			res := s.crawlTenant(ctx, tenantID, regs, domain.JobTypeCrawl, initiator, trigger)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].TenantID < results[j].TenantID })
	report.Tenants = results
	for _, res := range results {
		if res.JobID != "" {
			report.JobsCreated++
		}
		if res.Status == domain.JobCompleted {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	logger.Info("nightly crawl: %d tenants selected, %d jobs, %d succeeded, %d failed",
		report.TenantsSelected, report.JobsCreated, report.Succeeded, report.Failed)
	return report, nil
}

// TriggerTenant crawls one tenant's enabled domains, or only domainName when
// given, ignoring the recrawl gate.
func (s *CrawlScheduler) TriggerTenant(
	ctx context.Context, tenantID, domainName, initiator string,
) (*domain.TenantCrawlResult, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	if s.crawler == nil {
		return nil, domain.ErrCrawlerUnavailable
	}

	var regs []domain.DomainRegistration
	if domainName != "" {
		reg, err := s.domains.GetDomain(ctx, tenantID, domain.NormalizeDomain(domainName))
		if err != nil {
			return nil, err
		}
		if !reg.Enabled {
			return nil, fmt.Errorf("domain %s is disabled: %w", reg.Domain, domain.ErrInvalidInput)
		}
		regs = append(regs, *reg)
	} else {
		all, err := s.domains.ListDomains(ctx, tenantID)
		if err != nil {
			return nil, fmt.Errorf("list domains: %w", err)
		}
		for _, reg := range all {
			if reg.Enabled {
				regs = append(regs, reg)
			}
		}
	}
	if len(regs) == 0 {
		return nil, fmt.Errorf("tenant %s has no enabled domains: %w", tenantID, domain.ErrNotFound)
	}

	trigger := map[string]any{"manual": true}
	if domainName != "" {
		trigger["domain"] = regs[0].Domain
	}
	res := s.crawlTenant(ctx, tenantID, regs, domain.JobTypeManualCrawl, initiator, trigger)
	return &res, nil
}

// dueDomains returns the tenant's enabled registrations past their recrawl interval.
func (s *CrawlScheduler) dueDomains(ctx context.Context, tenantID string) ([]domain.DomainRegistration, error) {
	all, err := s.domains.ListDomains(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var due []domain.DomainRegistration
	for i := range all {
		if all[i].DueForCrawl(now) {
			due = append(due, all[i])
		}
	}
	return due, nil
}

// crawlTenant runs one job: scheduled, running, then completed or failed.
// The job record is written even when ctx expires.
func (s *CrawlScheduler) crawlTenant(
	parent context.Context,
	tenantID string,
	regs []domain.DomainRegistration,
	jobType domain.JobType,
	initiator string,
	trigger map[string]any,
) domain.TenantCrawlResult {
	result := domain.TenantCrawlResult{TenantID: tenantID, Status: domain.JobFailed}
	persist := context.WithoutCancel(parent)

	names := make([]string, len(regs))
	for i := range regs {
		names[i] = regs[i].Domain
	}
	trigger["domains"] = names

	job := &domain.IngestJob{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Type:      jobType,
		Status:    domain.JobScheduled,
		Stats:     make(map[string]int),
		Initiator: initiator,
		Trigger:   trigger,
		CreatedAt: s.now(),
	}
	if err := s.jobs.SaveJob(persist, job); err != nil {
		result.Error = fmt.Sprintf("create job: %v", err)
		logger.Error("tenant %s: %s", tenantID, result.Error)
		return result
	}
	result.JobID = job.ID

	job.Status = domain.JobRunning
	job.StartedAt = s.now()
	if err := s.jobs.SaveJob(persist, job); err != nil {
		logger.Warn("tenant %s: mark job %s running: %v", tenantID, job.ID, err)
	}

	ctx, cancel := context.WithTimeout(parent, s.cfg.TenantTimeout)
	defer cancel()

	var domainErrs []string
	crawled := 0
	for i := range regs {
		if ctx.Err() != nil {
			break
		}
		if err := s.crawlDomain(ctx, job, &regs[i]); err != nil {
			domainErrs = append(domainErrs, fmt.Sprintf("%s: %v", regs[i].Domain, err))
			job.AddStat(domain.StatFailures, 1)
			continue
		}
		crawled++
	}

	job.EndedAt = s.now()
	switch {
	case ctx.Err() != nil:
		job.Status = domain.JobFailed
		job.Error = fmt.Sprintf("tenant crawl stopped: %v", ctx.Err())
	case crawled == 0:
		job.Status = domain.JobFailed
		job.Error = strings.Join(domainErrs, "; ")
	default:
		job.Status = domain.JobCompleted
		if len(domainErrs) > 0 {
			job.Error = strings.Join(domainErrs, "; ")
		}
	}
	if err := s.jobs.SaveJob(persist, job); err != nil {
		logger.Error("tenant %s: finish job %s: %v", tenantID, job.ID, err)
	}

	result.Status = job.Status
	result.Domains = job.Stats[domain.StatDomains]
	result.Pages = job.Stats[domain.StatPages]
	result.Chunks = job.Stats[domain.StatChunks]
	result.Error = job.Error

	payload := map[string]any{
		"job_id":    job.ID,
		"job_type":  string(job.Type),
		"domains":   result.Domains,
		"pages":     result.Pages,
		"documents": job.Stats[domain.StatDocuments],
		"chunks":    result.Chunks,
		"failures":  job.Stats[domain.StatFailures],
	}
	eventType := domain.EventCrawlCompleted
	if job.Status == domain.JobFailed {
		eventType = domain.EventCrawlFailed
		payload["error"] = job.Error
		logger.Warn("tenant %s: crawl job %s failed: %s", tenantID, job.ID, job.Error)
	} else {
		logger.Info("tenant %s: crawl job %s completed in %s (%d pages, %d chunks)",
			tenantID, job.ID, job.Duration(), result.Pages, result.Chunks)
	}
	publish(persist, s.outbox, tenantID, eventType, payload)
	writeAudit(persist, s.audit, domain.AuditEntry{
		TenantID:  tenantID,
		Operation: domain.AuditCrawlRun,
		Actor:     initiator,
		Summary:   fmt.Sprintf("%s job %s %s", job.Type, job.ID, job.Status),
		Details:   payload,
	})
	return result
}

// crawlDomain fetches one domain and folds every page into a document.
// Only a crawl that yields nothing is an error; page failures are counted.
func (s *CrawlScheduler) crawlDomain(ctx context.Context, job *domain.IngestJob, reg *domain.DomainRegistration) error {
	pages, err := s.crawler.Crawl(ctx, *reg, s.cfg.MaxPages)
	if err != nil {
		return err
	}
	job.AddStat(domain.StatDomains, 1)

	existing, err := s.documentsBySource(ctx, job.TenantID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	for _, page := range pages {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		job.AddStat(domain.StatPages, 1)
		if err := s.ingestPage(ctx, job, page, existing[page.URL]); err != nil {
			logger.Warn("tenant %s: page %s: %v", job.TenantID, page.URL, err)
			job.AddStat(domain.StatFailures, 1)
		}
	}

	reg.LastCrawledAt = s.now()
	reg.UpdatedAt = reg.LastCrawledAt
	if err := s.domains.SaveDomain(context.WithoutCancel(ctx), reg); err != nil {
		logger.Warn("tenant %s: record crawl of %s: %v", job.TenantID, reg.Domain, err)
	}
	return nil
}

// ingestPage registers and processes a page. Unchanged completed pages are skipped.
func (s *CrawlScheduler) ingestPage(ctx context.Context, job *domain.IngestJob, page domain.CrawlPage, prior *domain.Document) error {
	if strings.TrimSpace(page.Markdown) == "" {
		return fmt.Errorf("empty page: %w", domain.ErrExtraction)
	}
	if prior != nil && prior.Status == domain.StatusCompleted &&
		page.ContentHash != "" && prior.Metadata[domain.MetaContentHash] == page.ContentHash {
		logger.Debug("tenant %s: page %s unchanged", job.TenantID, page.URL)
		return nil
	}

	req := driving.RegisterRequest{
		TenantID: job.TenantID,
		Title:    page.Title,
		FileName: domain.PageFileName(page.URL),
		MimeType: "text/markdown",
		Content:  []byte(page.Markdown),
		Metadata: map[string]any{
			domain.MetaSourceURL:   page.URL,
			domain.MetaContentHash: page.ContentHash,
			domain.MetaCrawlJobID:  job.ID,
		},
	}
	if prior != nil {
		req.DocumentID = prior.ID
	}
	doc, err := s.registry.Register(ctx, req)
	if err != nil {
		return err
	}

	res, err := s.processor.Process(ctx, job.TenantID, doc.ID, false)
	if err != nil {
		return err
	}
	if res.Status != domain.StatusCompleted {
		return fmt.Errorf("document %s %s: %s", doc.ID, res.Status, res.Error)
	}
	job.AddStat(domain.StatDocuments, 1)
	job.AddStat(domain.StatChunks, res.Chunks)
	return nil
}

func (s *CrawlScheduler) documentsBySource(ctx context.Context, tenantID string) (map[string]*domain.Document, error) {
	docs, err := s.docs.ListDocuments(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	bySource := make(map[string]*domain.Document)
	for i := range docs {
		if src, ok := docs[i].Metadata[domain.MetaSourceURL].(string); ok && src != "" {
			bySource[src] = &docs[i]
		}
	}
	return bySource, nil
}

// Status derives the tenant's crawl state from its latest crawl job and
// its crawled documents.
func (s *CrawlScheduler) Status(ctx context.Context, tenantID string) (*domain.CrawlStatus, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	regs, err := s.domains.ListDomains(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	status := &domain.CrawlStatus{State: domain.CrawlIdle}
	for i := range regs {
		if regs[i].Enabled {
			status.Domains++
		}
	}

	crawled, err := s.documentsBySource(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	for _, doc := range crawled {
		status.Pages++
		if doc.Status == domain.StatusCompleted {
			status.Chunks += doc.TotalChunks
		}
	}

	jobs, err := s.jobs.ListJobs(ctx, tenantID, statusJobWindow)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	for i := range jobs {
		if jobs[i].Type == domain.JobTypeCrawl || jobs[i].Type == domain.JobTypeManualCrawl {
			job := jobs[i]
			status.LastJob = &job
			break
		}
	}

	switch {
	case status.LastJob == nil:
		status.Message = "no crawl has run"
	case status.LastJob.Status == domain.JobScheduled, status.LastJob.Status == domain.JobRunning:
		status.State = domain.CrawlRunning
		status.Message = fmt.Sprintf("crawl %s since %s", status.LastJob.Status, status.LastJob.CreatedAt.Format(time.RFC3339))
	case status.LastJob.Status == domain.JobCompleted:
		status.State = domain.CrawlSuccess
		status.Message = fmt.Sprintf("last crawl finished %s", status.LastJob.EndedAt.Format(time.RFC3339))
	default:
		status.State = domain.CrawlFailed
		status.Message = status.LastJob.Error
	}
	return status, nil
}
