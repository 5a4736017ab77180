package mcp

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	response   *domain.SearchResponse
	err        error
	tenantID   string
	matchCount int
	minScore   float64
}

func (m *mockRetrievalService) Search(context.Context, domain.SearchQuery) ([]domain.SearchResult, error) {
	if m.response == nil {
		return nil, m.err
	}
	return m.response.Results, m.err
}

func (m *mockRetrievalService) SearchText(
	_ context.Context,
	tenantID, text string,
	matchCount int,
	minScore float64,
) (*domain.SearchResponse, error) {
	m.tenantID = tenantID
	m.matchCount = matchCount
	m.minScore = minScore
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{Query: text, Intent: domain.IntentGeneral, Results: []domain.SearchResult{}}, nil
	}
	return m.response, nil
}

// mockCrawlService is a mock implementation of driving.CrawlService.
type mockCrawlService struct {
	status *domain.CrawlStatus
	err    error
}

func (m *mockCrawlService) RegisterDomain(_ context.Context, reg domain.DomainRegistration) (*domain.DomainRegistration, error) {
	return &reg, m.err
}

func (m *mockCrawlService) SetDomainEnabled(context.Context, string, string, bool) error {
	return m.err
}

func (m *mockCrawlService) ListDomains(context.Context, string) ([]domain.DomainRegistration, error) {
	return nil, m.err
}

func (m *mockCrawlService) RunNightly(context.Context, string) (*domain.CrawlRunReport, error) {
	return &domain.CrawlRunReport{}, m.err
}

func (m *mockCrawlService) TriggerTenant(context.Context, string, string, string) (*domain.TenantCrawlResult, error) {
	return &domain.TenantCrawlResult{}, m.err
}

func (m *mockCrawlService) Status(context.Context, string) (*domain.CrawlStatus, error) {
	return m.status, m.err
}

// mockDocumentRegistry is a mock implementation of driving.DocumentRegistry.
type mockDocumentRegistry struct {
	documents []domain.Document
	err       error
	tenantID  string
}

func (m *mockDocumentRegistry) Register(context.Context, driving.RegisterRequest) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentRegistry) Get(context.Context, string, string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentRegistry) List(_ context.Context, tenantID string) ([]domain.Document, error) {
	m.tenantID = tenantID
	return m.documents, m.err
}

func (m *mockDocumentRegistry) BeginProcessing(context.Context, string, string, bool) (*domain.Document, bool, error) {
	return nil, false, m.err
}

func (m *mockDocumentRegistry) Complete(context.Context, string, string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentRegistry) Fail(context.Context, string, string, domain.FailureKind, error) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentRegistry) ResetToPending(context.Context, string, string) (*domain.Document, error) {
	return nil, m.err
}

func (m *mockDocumentRegistry) ReconcileChunkCount(context.Context, string, string) (*domain.Document, error) {
	return nil, m.err
}
