package httpapi

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
)

// mockRegistry is a mock implementation of driving.DocumentRegistry.
type mockRegistry struct {
	documents  []domain.Document
	document   *domain.Document
	err        error
	registered *driving.RegisterRequest
	tenant     string
}

func (m *mockRegistry) Register(_ context.Context, req driving.RegisterRequest) (*domain.Document, error) {
	m.registered = &req
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Document{
		ID:       "doc-new",
		TenantID: req.TenantID,
		Title:    req.FileName,
		FileName: req.FileName,
		MimeType: req.MimeType,
		Status:   domain.StatusPending,
	}, nil
}

func (m *mockRegistry) Get(_ context.Context, tenantID, _ string) (*domain.Document, error) {
	m.tenant = tenantID
	return m.document, m.err
}

func (m *mockRegistry) List(_ context.Context, tenantID string) ([]domain.Document, error) {
	m.tenant = tenantID
	return m.documents, m.err
}

func (m *mockRegistry) BeginProcessing(context.Context, string, string, bool) (*domain.Document, bool, error) {
	return m.document, true, m.err
}

func (m *mockRegistry) Complete(context.Context, string, string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockRegistry) Fail(context.Context, string, string, domain.FailureKind, error) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockRegistry) ResetToPending(context.Context, string, string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockRegistry) ReconcileChunkCount(context.Context, string, string) (*domain.Document, error) {
	return m.document, m.err
}

// mockProcessor is a mock implementation of driving.ProcessingService.
type mockProcessor struct {
	result *domain.ProcessResult
	err    error
	force  bool
	calls  int
}

func (m *mockProcessor) Process(_ context.Context, _, documentID string, force bool) (*domain.ProcessResult, error) {
	m.calls++
	m.force = force
	if m.result != nil {
		return m.result, m.err
	}
	return &domain.ProcessResult{DocumentID: documentID, Status: domain.StatusCompleted}, m.err
}

func (m *mockProcessor) ProcessPending(context.Context, string) ([]domain.ProcessResult, error) {
	return nil, m.err
}

// mockRetrieval is a mock implementation of driving.RetrievalService.
type mockRetrieval struct {
	results  []domain.SearchResult
	response *domain.SearchResponse
	err      error
	query    *domain.SearchQuery
	text     string
}

func (m *mockRetrieval) Search(_ context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	m.query = &q
	return m.results, m.err
}

func (m *mockRetrieval) SearchText(_ context.Context, _, text string, _ int, _ float64) (*domain.SearchResponse, error) {
	m.text = text
	return m.response, m.err
}

// mockCrawl is a mock implementation of driving.CrawlService.
type mockCrawl struct {
	regs       []domain.DomainRegistration
	report     *domain.CrawlRunReport
	result     *domain.TenantCrawlResult
	status     *domain.CrawlStatus
	err        error
	registered *domain.DomainRegistration
	nightly    int
	domainName string
}

func (m *mockCrawl) RegisterDomain(_ context.Context, reg domain.DomainRegistration) (*domain.DomainRegistration, error) {
	m.registered = &reg
	if m.err != nil {
		return nil, m.err
	}
	reg.ID = "reg-1"
	return &reg, nil
}

func (m *mockCrawl) SetDomainEnabled(context.Context, string, string, bool) error {
	return m.err
}

func (m *mockCrawl) ListDomains(context.Context, string) ([]domain.DomainRegistration, error) {
	return m.regs, m.err
}

func (m *mockCrawl) RunNightly(context.Context, string) (*domain.CrawlRunReport, error) {
	m.nightly++
	return m.report, m.err
}

func (m *mockCrawl) TriggerTenant(_ context.Context, _, domainName, _ string) (*domain.TenantCrawlResult, error) {
	m.domainName = domainName
	return m.result, m.err
}

func (m *mockCrawl) Status(context.Context, string) (*domain.CrawlStatus, error) {
	return m.status, m.err
}

// mockDedup is a mock implementation of driving.Deduplicator.
type mockDedup struct {
	scope string
	actor string
}

func (m *mockDedup) CleanDocument(_ context.Context, tenantID, documentID, actor string) (*domain.CleanupReport, error) {
	m.scope = documentID
	m.actor = actor
	return &domain.CleanupReport{TenantID: tenantID}, nil
}

func (m *mockDedup) CleanTenant(_ context.Context, tenantID, actor string) (*domain.CleanupReport, error) {
	m.scope = "tenant"
	m.actor = actor
	return &domain.CleanupReport{TenantID: tenantID, DuplicateSets: 1, TotalCleaned: 1}, nil
}

// mockRecovery is a mock implementation of driving.CorruptionRecovery.
type mockRecovery struct {
	scope string
}

func (m *mockRecovery) ScanDocument(_ context.Context, tenantID, documentID, _ string) (*domain.RecoveryReport, error) {
	m.scope = documentID
	return &domain.RecoveryReport{TenantID: tenantID, DocumentsScanned: 1}, nil
}

func (m *mockRecovery) ScanTenant(_ context.Context, tenantID, _ string) (*domain.RecoveryReport, error) {
	m.scope = "tenant"
	return &domain.RecoveryReport{TenantID: tenantID}, nil
}

// mockEmbeddings is a mock implementation of driving.EmbeddingRegenerator.
type mockEmbeddings struct {
	mode domain.EmbeddingMode
}

func (m *mockEmbeddings) Regenerate(_ context.Context, tenantID string, mode domain.EmbeddingMode, _ string) (*domain.EmbeddingReport, error) {
	m.mode = mode
	return &domain.EmbeddingReport{TenantID: tenantID, Mode: mode}, nil
}

func (m *mockEmbeddings) Backfill(context.Context, []string) ([]domain.EmbeddingReport, error) {
	return nil, nil
}

// mockRequeue is a mock implementation of driving.RequeueOrchestrator.
type mockRequeue struct {
	result *domain.RequeueResult
	err    error
	req    *driving.RequeueRequest
}

func (m *mockRequeue) Requeue(_ context.Context, req driving.RequeueRequest) (*domain.RequeueResult, error) {
	m.req = &req
	return m.result, m.err
}
