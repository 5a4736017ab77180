package cli

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
)

var errMock = errors.New("mock failure")

// mockDocumentRegistry implements driving.DocumentRegistry over a fixed set.
type mockDocumentRegistry struct {
	docs       []domain.Document
	registered []driving.RegisterRequest
	err        error
}

func (m *mockDocumentRegistry) Register(_ context.Context, req driving.RegisterRequest) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.registered = append(m.registered, req)
	return &domain.Document{
		ID:          "doc-new",
		TenantID:    req.TenantID,
		Title:       req.Title,
		FileName:    req.FileName,
		MimeType:    req.MimeType,
		StoragePath: req.TenantID + "/doc-new/" + req.FileName,
		Status:      domain.StatusPending,
	}, nil
}

func (m *mockDocumentRegistry) Get(_ context.Context, tenantID, id string) (*domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.docs {
		if m.docs[i].ID == id && m.docs[i].TenantID == tenantID {
			return &m.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentRegistry) List(_ context.Context, tenantID string) ([]domain.Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Document
	for i := range m.docs {
		if m.docs[i].TenantID == tenantID {
			out = append(out, m.docs[i])
		}
	}
	return out, nil
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

// mockProcessor implements driving.ProcessingService.
type mockProcessor struct {
	processed []string
	forced    bool
	pending   []domain.ProcessResult
	err       error
}

func (m *mockProcessor) Process(_ context.Context, _, documentID string, force bool) (*domain.ProcessResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.processed = append(m.processed, documentID)
	m.forced = force
	return &domain.ProcessResult{DocumentID: documentID, Status: domain.StatusCompleted, Chunks: 4, Embedded: 4}, nil
}

func (m *mockProcessor) ProcessPending(context.Context, string) ([]domain.ProcessResult, error) {
	return m.pending, m.err
}

// mockRetrieval implements driving.RetrievalService.
type mockRetrieval struct {
	response *domain.SearchResponse
	limit    int
	minScore float64
	err      error
}

func (m *mockRetrieval) Search(context.Context, domain.SearchQuery) ([]domain.SearchResult, error) {
	return nil, m.err
}

func (m *mockRetrieval) SearchText(_ context.Context, _, text string, matchCount int, minScore float64) (*domain.SearchResponse, error) {
	m.limit = matchCount
	m.minScore = minScore
	if m.err != nil {
		return nil, m.err
	}
	if m.response != nil {
		return m.response, nil
	}
	return &domain.SearchResponse{Query: text, Intent: domain.IntentGeneral}, nil
}

// mockCrawl implements driving.CrawlService.
type mockCrawl struct {
	registered []domain.DomainRegistration
	domains    []domain.DomainRegistration
	enabled    map[string]bool
	triggered  string
	initiator  string
	err        error
}

func (m *mockCrawl) RegisterDomain(_ context.Context, reg domain.DomainRegistration) (*domain.DomainRegistration, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.registered = append(m.registered, reg)
	return &reg, nil
}

func (m *mockCrawl) SetDomainEnabled(_ context.Context, _, domainName string, enabled bool) error {
	if m.err != nil {
		return m.err
	}
	if m.enabled == nil {
		m.enabled = make(map[string]bool)
	}
	m.enabled[domainName] = enabled
	return nil
}

func (m *mockCrawl) ListDomains(context.Context, string) ([]domain.DomainRegistration, error) {
	return m.domains, m.err
}

func (m *mockCrawl) RunNightly(_ context.Context, initiator string) (*domain.CrawlRunReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.initiator = initiator
	return &domain.CrawlRunReport{
		TenantsSelected: 1,
		JobsCreated:     1,
		Succeeded:       1,
		Tenants: []domain.TenantCrawlResult{
			{TenantID: "org-1", JobID: "job-1", Status: domain.JobCompleted, Domains: 1, Pages: 3, Chunks: 12},
		},
	}, nil
}

func (m *mockCrawl) TriggerTenant(_ context.Context, tenantID, domainName, initiator string) (*domain.TenantCrawlResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.triggered = domainName
	m.initiator = initiator
	return &domain.TenantCrawlResult{TenantID: tenantID, JobID: "job-2", Status: domain.JobCompleted, Domains: 1, Pages: 2, Chunks: 5}, nil
}

func (m *mockCrawl) Status(context.Context, string) (*domain.CrawlStatus, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CrawlStatus{
		State:   domain.CrawlSuccess,
		Domains: 2,
		Pages:   9,
		Chunks:  40,
		LastJob: &domain.IngestJob{ID: "job-7", Type: domain.JobTypeCrawl, Status: domain.JobCompleted},
	}, nil
}

// mockDedup implements driving.Deduplicator.
type mockDedup struct {
	documentID string
	actor      string
	err        error
}

func (m *mockDedup) CleanDocument(_ context.Context, tenantID, documentID, actor string) (*domain.CleanupReport, error) {
	m.documentID = documentID
	m.actor = actor
	return m.report(tenantID)
}

func (m *mockDedup) CleanTenant(_ context.Context, tenantID, actor string) (*domain.CleanupReport, error) {
	m.actor = actor
	return m.report(tenantID)
}

func (m *mockDedup) report(tenantID string) (*domain.CleanupReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.CleanupReport{
		TenantID:      tenantID,
		DuplicateSets: 1,
		TotalCleaned:  1,
		Removals: []domain.DuplicateRemoval{
			{Title: "Risk Register", KeptID: "doc-a", RemovedID: "doc-b", KeptChunks: 8, RemovedChunks: 2},
		},
	}, nil
}

// mockRecovery implements driving.CorruptionRecovery.
type mockRecovery struct {
	documentID string
	err        error
}

func (m *mockRecovery) ScanDocument(_ context.Context, tenantID, documentID, _ string) (*domain.RecoveryReport, error) {
	m.documentID = documentID
	return m.report(tenantID)
}

func (m *mockRecovery) ScanTenant(_ context.Context, tenantID, _ string) (*domain.RecoveryReport, error) {
	return m.report(tenantID)
}

func (m *mockRecovery) report(tenantID string) (*domain.RecoveryReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.RecoveryReport{
		TenantID:         tenantID,
		DocumentsScanned: 2,
		ChunksScanned:    10,
		ChunksPurged:     3,
		DocumentsReset:   1,
		Documents: []domain.DocumentRecovery{
			{DocumentID: "doc-1", Title: "Scan", ChunksScanned: 3, Purged: 3, ResetPending: true},
			{DocumentID: "doc-2", Title: "Clean", ChunksScanned: 7},
		},
		Failures: []domain.ItemFailure{{ID: "doc-3", Error: "storage offline"}},
	}, nil
}

// mockEmbeddings implements driving.EmbeddingRegenerator.
type mockEmbeddings struct {
	mode domain.EmbeddingMode
	err  error
}

func (m *mockEmbeddings) Regenerate(_ context.Context, tenantID string, mode domain.EmbeddingMode, _ string) (*domain.EmbeddingReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.mode = mode
	return &domain.EmbeddingReport{TenantID: tenantID, Mode: mode, Total: 5, Embedded: 5, Batches: 1}, nil
}

func (m *mockEmbeddings) Backfill(context.Context, []string) ([]domain.EmbeddingReport, error) {
	return nil, m.err
}

// mockRequeue implements driving.RequeueOrchestrator.
type mockRequeue struct {
	req    driving.RequeueRequest
	result *domain.RequeueResult
	err    error
}

func (m *mockRequeue) Requeue(_ context.Context, req driving.RequeueRequest) (*domain.RequeueResult, error) {
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RequeueResult{
		DocumentID:    req.DocumentID,
		RequestID:     "req-1",
		ChunksDeleted: 6,
		PathRepair:    domain.RepairCanonical,
		StoragePath:   req.TenantID + "/" + req.DocumentID + "/file.pdf",
		Process:       &domain.ProcessResult{DocumentID: req.DocumentID, Status: domain.StatusCompleted, Chunks: 6, Embedded: 6},
	}, nil
}

// mockDispatcher implements driving.EventDispatcher.
type mockDispatcher struct {
	limit int
	err   error
}

func (m *mockDispatcher) Dispatch(_ context.Context, limit int) (int, error) {
	m.limit = limit
	if m.err != nil {
		return 0, m.err
	}
	return 3, nil
}

// mockScheduler implements driving.Scheduler.
type mockScheduler struct {
	failTask bool
	err      error
}

func (m *mockScheduler) Start(context.Context) error { return nil }

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) RunNow(_ context.Context, taskID string) (*domain.TaskResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	started := time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC)
	result := &domain.TaskResult{
		TaskID:         taskID,
		StartedAt:      started,
		EndedAt:        started.Add(1500 * time.Millisecond),
		Success:        !m.failTask,
		ItemsProcessed: 7,
	}
	if m.failTask {
		result.Error = "tenant org-2 failed"
		return result, errMock
	}
	return result, nil
}

// mockSettings implements driving.SettingsService over an in-memory map.
type mockSettings struct {
	settings domain.Settings
	set      map[string]any
	err      error
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	if m.err != nil {
		return nil, m.err
	}
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key string, value any) error {
	if key == "unknown" {
		return domain.ErrInvalidInput
	}
	if m.set == nil {
		m.set = make(map[string]any)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettings) KnownKeys() []string {
	return []string{"cron_secret", "embedding.provider", "listen_addr"}
}

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	documents  *mockDocumentRegistry
	processor  *mockProcessor
	retrieval  *mockRetrieval
	crawl      *mockCrawl
	dedup      *mockDedup
	recovery   *mockRecovery
	embeddings *mockEmbeddings
	requeue    *mockRequeue
	dispatcher *mockDispatcher
	scheduler  *mockScheduler
	settings   *mockSettings
}

// setupTestServices installs fresh mocks, resets flag state and returns a
// cleanup function restoring an unconfigured CLI.
func setupTestServices() (*testServices, func()) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	ts := &testServices{
		documents: &mockDocumentRegistry{docs: []domain.Document{
			{
				ID: "doc-1", TenantID: "org-1", Title: "Org Profile", FileName: "profile.md",
				MimeType: "text/markdown", StoragePath: "org-1/doc-1/profile.md",
				Status: domain.StatusCompleted, TotalChunks: 6, CreatedAt: created, UpdatedAt: created,
				Metadata: map[string]any{"source": "upload"},
			},
			{
				ID: "doc-2", TenantID: "org-1", Title: "Risk Register", FileName: "risks.docx",
				Status: domain.StatusPending, CreatedAt: created, UpdatedAt: created,
			},
			{ID: "doc-3", TenantID: "org-2", Title: "Other Tenant", Status: domain.StatusPending},
		}},
		processor:  &mockProcessor{},
		retrieval:  &mockRetrieval{},
		crawl:      &mockCrawl{},
		dedup:      &mockDedup{},
		recovery:   &mockRecovery{},
		embeddings: &mockEmbeddings{},
		requeue:    &mockRequeue{},
		dispatcher: &mockDispatcher{},
		scheduler:  &mockScheduler{},
		settings:   &mockSettings{settings: domain.DefaultSettings()},
	}

	Configure(Services{
		Documents:  ts.documents,
		Processor:  ts.processor,
		Retrieval:  ts.retrieval,
		Crawl:      ts.crawl,
		Dedup:      ts.dedup,
		Recovery:   ts.recovery,
		Embeddings: ts.embeddings,
		Requeue:    ts.requeue,
		Dispatcher: ts.dispatcher,
		Scheduler:  ts.scheduler,
		Settings:   ts.settings,
	})
	resetFlags()

	return ts, func() {
		Configure(Services{})
		resetFlags()
	}
}

// resetFlags restores flag variables, which cobra leaves set between runs.
func resetFlags() {
	tenantFlag = ""
	actorFlag = ""
	verboseFlag = false
	uploadTitle = ""
	uploadMIME = ""
	uploadProcess = false
	processForce = false
	requeueForce = false
	searchLimit = domain.DefaultMatchCount
	searchMinScore = domain.DefaultMinScore
	searchJSON = false
	domainDepth = domain.DefaultCrawlDepth
	domainRecrawl = domain.DefaultRecrawlHours
	domainDisabled = false
	embeddingsForceAll = false
	dispatchLimit = 100
	versionShort = false
}

// executeCommand runs the root command with args and returns its output.
func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
