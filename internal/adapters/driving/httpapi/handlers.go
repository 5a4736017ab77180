package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/services"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/normalisers"
)

// actorHeader optionally names the user behind a maintenance request.
const actorHeader = "X-Actor-ID"

func actorFrom(r *http.Request) string {
	if a := r.Header.Get(actorHeader); a != "" {
		return a
	}
	return domain.ActorSystem
}

// ==================== Documents ====================

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Documents.List(r.Context(), tenantFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]documentDTO, 0, len(docs))
	for i := range docs {
		out = append(out, toDocumentDTO(&docs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ports.Documents.Get(r.Context(), tenantFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(doc))
}

type uploadResponse struct {
	Document documentDTO           `json:"document"`
	Process  *domain.ProcessResult `json:"process,omitempty"`
}

// handleUploadDocument stores a multipart "file" field and, unless the
// "process" field is "false", processes it straight away.
func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read file: "+err.Error())
		return
	}

	mimeType := r.FormValue("mimeType")
	if mimeType == "" {
		mimeType = normalisers.DetectMIMEType(header.Filename, content)
	}

	tenantID := tenantFrom(r)
	doc, err := s.ports.Documents.Register(r.Context(), driving.RegisterRequest{
		TenantID: tenantID,
		Title:    r.FormValue("title"),
		FileName: header.Filename,
		MimeType: mimeType,
		Content:  content,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := uploadResponse{Document: toDocumentDTO(doc)}
	processNow := true
	if v := r.FormValue("process"); v != "" {
		processNow, _ = strconv.ParseBool(v)
	}
	if processNow && s.ports.Processor != nil {
		result, err := s.ports.Processor.Process(r.Context(), tenantID, doc.ID, false)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		resp.Process = result
		if refreshed, err := s.ports.Documents.Get(r.Context(), tenantID, doc.ID); err == nil {
			resp.Document = toDocumentDTO(refreshed)
		}
	}
	writeJSON(w, http.StatusCreated, resp)
}

type reprocessRequest struct {
	ForceReprocess bool `json:"forceReprocess"`
}

func (s *Server) handleReprocessDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Processor == nil {
		unavailable(w, "processing")
		return
	}
	var req reprocessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	result, err := s.ports.Processor.Process(r.Context(), tenantFrom(r), chi.URLParam(r, "id"), req.ForceReprocess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRequeueDocument(w http.ResponseWriter, r *http.Request) {
	if s.ports.Requeue == nil {
		unavailable(w, "requeue")
		return
	}
	var req reprocessRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	result, err := s.ports.Requeue.Requeue(r.Context(), driving.RequeueRequest{
		TenantID:   tenantFrom(r),
		DocumentID: chi.URLParam(r, "id"),
		Force:      req.ForceReprocess,
		Actor:      actorFrom(r),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusOK
	if !result.OK() {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

// ==================== Maintenance ====================

type documentScopeRequest struct {
	DocumentID string `json:"documentId"`
}

func (s *Server) handleDedup(w http.ResponseWriter, r *http.Request) {
	if s.ports.Dedup == nil {
		unavailable(w, "deduplication")
		return
	}
	var req documentScopeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var (
		report *domain.CleanupReport
		err    error
	)
	if req.DocumentID != "" {
		report, err = s.ports.Dedup.CleanDocument(r.Context(), tenantFrom(r), req.DocumentID, actorFrom(r))
	} else {
		report, err = s.ports.Dedup.CleanTenant(r.Context(), tenantFrom(r), actorFrom(r))
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleCorruption(w http.ResponseWriter, r *http.Request) {
	if s.ports.Recovery == nil {
		unavailable(w, "corruption recovery")
		return
	}
	var req documentScopeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	var (
		report *domain.RecoveryReport
		err    error
	)
	if req.DocumentID != "" {
		report, err = s.ports.Recovery.ScanDocument(r.Context(), tenantFrom(r), req.DocumentID, actorFrom(r))
	} else {
		report, err = s.ports.Recovery.ScanTenant(r.Context(), tenantFrom(r), actorFrom(r))
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type embeddingsRequest struct {
	ForceAll bool `json:"forceAll"`
}

func (s *Server) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	if s.ports.Embeddings == nil {
		unavailable(w, "embedding regeneration")
		return
	}
	var req embeddingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	mode := domain.EmbedMissingOnly
	if req.ForceAll {
		mode = domain.EmbedForceAll
	}
	report, err := s.ports.Embeddings.Regenerate(r.Context(), tenantFrom(r), mode, actorFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ==================== Domains and crawl ====================

func (s *Server) handleListDomains(w http.ResponseWriter, r *http.Request) {
	if s.ports.Crawl == nil {
		unavailable(w, "crawl")
		return
	}
	regs, err := s.ports.Crawl.ListDomains(r.Context(), tenantFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]domainDTO, 0, len(regs))
	for i := range regs {
		out = append(out, toDomainDTO(&regs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"domains": out})
}

type registerDomainRequest struct {
	Domain       string `json:"domain"`
	Enabled      *bool  `json:"enabled"`
	CrawlDepth   int    `json:"crawlDepth"`
	RecrawlHours int    `json:"recrawlHours"`
}

func (s *Server) handleRegisterDomain(w http.ResponseWriter, r *http.Request) {
	if s.ports.Crawl == nil {
		unavailable(w, "crawl")
		return
	}
	var req registerDomainRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	reg, err := s.ports.Crawl.RegisterDomain(r.Context(), domain.DomainRegistration{
		TenantID:     tenantFrom(r),
		Domain:       req.Domain,
		Enabled:      enabled,
		CrawlDepth:   req.CrawlDepth,
		RecrawlHours: req.RecrawlHours,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDomainDTO(reg))
}

type crawlTriggerRequest struct {
	Domain string `json:"domain"`
}

func (s *Server) handleCrawlTrigger(w http.ResponseWriter, r *http.Request) {
	if s.ports.Crawl == nil {
		unavailable(w, "crawl")
		return
	}
	var req crawlTriggerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	result, err := s.ports.Crawl.TriggerTenant(r.Context(), tenantFrom(r), req.Domain, actorFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCrawlStatus(w http.ResponseWriter, r *http.Request) {
	if s.ports.Crawl == nil {
		unavailable(w, "crawl")
		return
	}
	status, err := s.ports.Crawl.Status(r.Context(), tenantFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCrawlStatusDTO(status))
}

// handleCronNightly authenticates before touching any tenant.
func (s *Server) handleCronNightly(w http.ResponseWriter, r *http.Request) {
	if !services.VerifyCronSecret(s.config.CronSecret, r.Header.Get(CronSecretHeader)) {
		writeServiceError(w, domain.ErrUnauthorized)
		return
	}
	if s.ports.Crawl == nil {
		unavailable(w, "crawl")
		return
	}
	report, err := s.ports.Crawl.RunNightly(r.Context(), "cron")
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ==================== Search ====================

type searchRequest struct {
	Query      string    `json:"query"`
	Embedding  []float32 `json:"embedding"`
	MatchCount int       `json:"matchCount"`
	// MinScore is optional; absent means domain.DefaultMinScore, 0 means no floor.
	MinScore *float64 `json:"minScore"`
}

// handleSearch accepts either a text query or a precomputed embedding.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.ports.Retrieval == nil {
		unavailable(w, "retrieval")
		return
	}
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if len(req.Embedding) > 0 {
		results, err := s.ports.Retrieval.Search(r.Context(), domain.SearchQuery{
			TenantID:   tenantFrom(r),
			Embedding:  req.Embedding,
			MatchCount: req.MatchCount,
			MinScore:   domain.MinScoreOrDefault(req.MinScore),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, searchResponseDTO{Results: toSearchResults(results)})
		return
	}

	if req.Query == "" {
		writeServiceError(w, fmt.Errorf("query or embedding is required: %w", domain.ErrInvalidInput))
		return
	}
	resp, err := s.ports.Retrieval.SearchText(r.Context(), tenantFrom(r), req.Query, req.MatchCount, domain.MinScoreOrDefault(req.MinScore))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponseDTO{
		Query:   resp.Query,
		Intent:  string(resp.Intent),
		Results: toSearchResults(resp.Results),
	})
}
