package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// fakeCrawler serves canned pages per domain.
type fakeCrawler struct {
	mu     sync.Mutex
	pages  map[string][]domain.CrawlPage
	errs   map[string]error
	block  bool
	called []string
}

func newFakeCrawler() *fakeCrawler {
	return &fakeCrawler{pages: make(map[string][]domain.CrawlPage), errs: make(map[string]error)}
}

func (c *fakeCrawler) Crawl(ctx context.Context, reg domain.DomainRegistration, maxPages int) ([]domain.CrawlPage, error) {
	c.mu.Lock()
	c.called = append(c.called, reg.Domain)
	pages, err, block := c.pages[reg.Domain], c.errs[reg.Domain], c.block
	c.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if len(pages) > maxPages {
		pages = pages[:maxPages]
	}
	return pages, nil
}

func (c *fakeCrawler) calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.called...)
}

func page(url, hash string) domain.CrawlPage {
	return domain.CrawlPage{
		URL:         url,
		Title:       "About " + url,
		Markdown:    "# About\n\n" + policyText,
		ContentHash: hash,
	}
}

func newCrawlScheduler(h *harness, crawler *fakeCrawler, cfg domain.CrawlSettings) *CrawlScheduler {
	var c driven.Crawler
	if crawler != nil {
		c = crawler
	}
	return NewCrawlScheduler(h.domains, h.jobs, h.docs, h.registry, h.processor, c, h.audit, h.outbox, cfg)
}

func registerDomain(t *testing.T, s *CrawlScheduler, tenantID, name string, enabled bool) *domain.DomainRegistration {
	t.Helper()
	reg, err := s.RegisterDomain(context.Background(), domain.DomainRegistration{
		TenantID: tenantID,
		Domain:   name,
		Enabled:  enabled,
	})
	require.NoError(t, err)
	return reg
}

func TestCrawlScheduler_RunNightly_OnlyDueTenantsGetJobs(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	crawler := newFakeCrawler()
	crawler.pages["alpha.org"] = []domain.CrawlPage{page("https://alpha.org/", "h1"), page("https://alpha.org/team", "h2")}
	crawler.pages["beta.org"] = []domain.CrawlPage{page("https://beta.org/", "h3")}
	s := newCrawlScheduler(h, crawler, domain.CrawlSettings{})

	registerDomain(t, s, "org-a", "alpha.org", true)
	registerDomain(t, s, "org-b", "https://Beta.org/", true)
	recent := registerDomain(t, s, "org-c", "gamma.org", true)
	recent.LastCrawledAt = time.Now().Add(-time.Hour)
	require.NoError(t, h.domains.SaveDomain(ctx, recent))
	registerDomain(t, s, "org-d", "delta.org", false)

	report, err := s.RunNightly(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TenantsSelected)
	assert.Equal(t, 2, report.JobsCreated)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	require.Len(t, report.Tenants, 2)
	assert.Equal(t, "org-a", report.Tenants[0].TenantID)
	assert.Equal(t, 2, report.Tenants[0].Pages)
	assert.Greater(t, report.Tenants[0].Chunks, 0)
	assert.ElementsMatch(t, []string{"alpha.org", "beta.org"}, crawler.calls())

	jobs, err := h.jobs.ListJobs(ctx, "org-a", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	job := jobs[0]
	assert.Equal(t, domain.JobTypeCrawl, job.Type)
	assert.Equal(t, domain.JobCompleted, job.Status)
	assert.Equal(t, "cron", job.Initiator)
	assert.Equal(t, "nightly", job.Trigger["schedule"])
	assert.Equal(t, 1, job.Stats[domain.StatDomains])
	assert.Equal(t, 2, job.Stats[domain.StatDocuments])
	assert.False(t, job.StartedAt.IsZero())
	assert.False(t, job.EndedAt.IsZero())

	none, err := h.jobs.ListJobs(ctx, "org-c", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	reg, err := h.domains.GetDomain(ctx, "org-a", "alpha.org")
	require.NoError(t, err)
	assert.False(t, reg.LastCrawledAt.IsZero())

	docs, err := h.docs.ListDocuments(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, domain.StatusCompleted, d.Status)
		assert.Equal(t, job.ID, d.Metadata[domain.MetaCrawlJobID])
		assert.Equal(t, "text/markdown", d.MimeType)
	}
}

func TestCrawlScheduler_RunNightly_FailingTenantDoesNotStopOthers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	crawler := newFakeCrawler()
	crawler.pages["alpha.org"] = []domain.CrawlPage{page("https://alpha.org/", "h1")}
	crawler.errs["broken.org"] = errors.New("connection refused")
	s := newCrawlScheduler(h, crawler, domain.CrawlSettings{})
	registerDomain(t, s, "org-a", "alpha.org", true)
	registerDomain(t, s, "org-b", "broken.org", true)

	report, err := s.RunNightly(ctx, "scheduler")
	require.NoError(t, err)

	assert.Equal(t, 2, report.JobsCreated)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.JobCompleted, report.Tenants[0].Status)
	assert.Equal(t, domain.JobFailed, report.Tenants[1].Status)
	assert.Contains(t, report.Tenants[1].Error, "connection refused")

	jobs, err := h.jobs.ListJobs(ctx, "org-b", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobFailed, jobs[0].Status)
	assert.Equal(t, 1, jobs[0].Stats[domain.StatFailures])

	assert.Contains(t, h.eventTypes(), domain.EventCrawlCompleted)
	assert.Contains(t, h.eventTypes(), domain.EventCrawlFailed)
	assert.Equal(t, []domain.AuditOperation{domain.AuditCrawlRun}, h.auditOps("org-b"))
}

func TestCrawlScheduler_TenantTimeoutFailsJob(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	crawler := newFakeCrawler()
	crawler.block = true
	s := newCrawlScheduler(h, crawler, domain.CrawlSettings{TenantTimeout: 20 * time.Millisecond})
	registerDomain(t, s, "org-a", "slow.org", true)

	report, err := s.RunNightly(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failed)
	jobs, err := h.jobs.ListJobs(ctx, "org-a", 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, domain.JobFailed, jobs[0].Status)
	assert.Contains(t, jobs[0].Error, "tenant crawl stopped")
}

func TestCrawlScheduler_UnchangedPagesAreSkipped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	crawler := newFakeCrawler()
	crawler.pages["alpha.org"] = []domain.CrawlPage{page("https://alpha.org/about", "same")}
	s := newCrawlScheduler(h, crawler, domain.CrawlSettings{})
	registerDomain(t, s, "org-a", "alpha.org", true)

	first, err := s.TriggerTenant(ctx, "org-a", "", "user-1")
	require.NoError(t, err)
	require.Equal(t, domain.JobCompleted, first.Status)
	embedCalls := h.provider.callCount()

	second, err := s.TriggerTenant(ctx, "org-a", "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, second.Status)
	assert.Equal(t, 1, second.Pages)
	assert.Equal(t, 0, second.Chunks)
	assert.Equal(t, embedCalls, h.provider.callCount())

	crawler.mu.Lock()
	crawler.pages["alpha.org"] = []domain.CrawlPage{page("https://alpha.org/about", "changed")}
	crawler.mu.Unlock()
	third, err := s.TriggerTenant(ctx, "org-a", "", "user-1")
	require.NoError(t, err)
	assert.Greater(t, third.Chunks, 0)

	docs, err := h.docs.ListDocuments(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "changed", docs[0].Metadata[domain.MetaContentHash])
	assert.Equal(t, "alpha.org_about.md", docs[0].FileName)
}

func TestCrawlScheduler_TriggerTenant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	crawler := newFakeCrawler()
	crawler.pages["alpha.org"] = []domain.CrawlPage{page("https://alpha.org/", "h1")}
	crawler.pages["beta.org"] = []domain.CrawlPage{page("https://beta.org/", "h2")}
	s := newCrawlScheduler(h, crawler, domain.CrawlSettings{})
	registerDomain(t, s, "org-a", "alpha.org", true)
	registerDomain(t, s, "org-a", "beta.org", true)
	registerDomain(t, s, "org-a", "off.org", false)

	res, err := s.TriggerTenant(ctx, "org-a", "ALPHA.org", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Domains)
	assert.Equal(t, []string{"alpha.org"}, crawler.calls())

	job, err := h.jobs.GetJob(ctx, "org-a", res.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobTypeManualCrawl, job.Type)
	assert.Equal(t, "user-1", job.Initiator)
	assert.Equal(t, true, job.Trigger["manual"])
	assert.Equal(t, "alpha.org", job.Trigger["domain"])

	all, err := s.TriggerTenant(ctx, "org-a", "", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, all.Domains)

	_, err = s.TriggerTenant(ctx, "org-a", "off.org", "user-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = s.TriggerTenant(ctx, "org-z", "", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.TriggerTenant(ctx, "org-a", "unknown.org", "user-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCrawlScheduler_WithoutCrawler(t *testing.T) {
	h := newHarness(t)
	s := newCrawlScheduler(h, nil, domain.CrawlSettings{})

	_, err := s.RunNightly(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrCrawlerUnavailable)
	_, err = s.TriggerTenant(context.Background(), "org-a", "", "")
	assert.ErrorIs(t, err, domain.ErrCrawlerUnavailable)
}

func TestCrawlScheduler_Status(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	crawler := newFakeCrawler()
	crawler.pages["alpha.org"] = []domain.CrawlPage{page("https://alpha.org/", "h1"), page("https://alpha.org/b", "h2")}
	s := newCrawlScheduler(h, crawler, domain.CrawlSettings{})
	registerDomain(t, s, "org-a", "alpha.org", true)
	registerDomain(t, s, "org-a", "off.org", false)

	before, err := s.Status(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, domain.CrawlIdle, before.State)
	assert.Equal(t, 1, before.Domains)
	assert.Nil(t, before.LastJob)

	res, err := s.TriggerTenant(ctx, "org-a", "", "")
	require.NoError(t, err)

	after, err := s.Status(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, domain.CrawlSuccess, after.State)
	assert.Equal(t, 2, after.Pages)
	assert.Equal(t, res.Chunks, after.Chunks)
	require.NotNil(t, after.LastJob)
	assert.Equal(t, res.JobID, after.LastJob.ID)

	crawler.mu.Lock()
	crawler.errs["alpha.org"] = errors.New("dns failure")
	crawler.mu.Unlock()
	_, err = s.TriggerTenant(ctx, "org-a", "", "")
	require.NoError(t, err)

	failed, err := s.Status(ctx, "org-a")
	require.NoError(t, err)
	assert.Equal(t, domain.CrawlFailed, failed.State)
	assert.Contains(t, failed.Message, "dns failure")
}

func TestCrawlScheduler_RegisterDomain(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := newCrawlScheduler(h, newFakeCrawler(), domain.CrawlSettings{})

	first := registerDomain(t, s, "org-a", "https://Example.org/path", true)
	assert.Equal(t, "example.org", first.Domain)
	assert.Equal(t, domain.DefaultCrawlDepth, first.CrawlDepth)
	assert.Equal(t, domain.DefaultRecrawlHours, first.RecrawlHours)

	updated, err := s.RegisterDomain(ctx, domain.DomainRegistration{
		TenantID: "org-a", Domain: "example.org", Enabled: false, CrawlDepth: 4, RecrawlHours: 48,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.False(t, updated.Enabled)
	assert.Equal(t, 4, updated.CrawlDepth)

	regs, err := s.ListDomains(ctx, "org-a")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, 48, regs[0].RecrawlHours)

	require.NoError(t, s.SetDomainEnabled(ctx, "org-a", "EXAMPLE.org", true))
	reg, err := h.domains.GetDomain(ctx, "org-a", "example.org")
	require.NoError(t, err)
	assert.True(t, reg.Enabled)

	_, err = s.RegisterDomain(ctx, domain.DomainRegistration{TenantID: "org-a", Domain: "x.org", CrawlDepth: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = s.RegisterDomain(ctx, domain.DomainRegistration{TenantID: "org-a", Domain: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, s.SetDomainEnabled(ctx, "org-a", "missing.org", true), domain.ErrNotFound)
}

func TestVerifyCronSecret(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		presented  string
		want       bool
	}{
		{"match", "s3cret", "s3cret", true},
		{"mismatch", "s3cret", "guess", false},
		{"empty presented", "s3cret", "", false},
		{"nothing configured", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyCronSecret(tt.configured, tt.presented))
		})
	}
}
