package httpapi

import (
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

type documentDTO struct {
	ID              string         `json:"id"`
	OrganizationID  string         `json:"organizationId"`
	Title           string         `json:"title"`
	FileName        string         `json:"fileName"`
	StoragePath     string         `json:"storagePath"`
	MimeType        string         `json:"mimeType"`
	Status          string         `json:"status"`
	TotalChunks     int            `json:"totalChunks"`
	RequeueAttempts int            `json:"requeueAttempts"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	ProcessedAt     *time.Time     `json:"processedAt,omitempty"`
}

func toDocumentDTO(d *domain.Document) documentDTO {
	dto := documentDTO{
		ID:              d.ID,
		OrganizationID:  d.TenantID,
		Title:           d.Title,
		FileName:        d.FileName,
		StoragePath:     d.StoragePath,
		MimeType:        d.MimeType,
		Status:          d.Status.String(),
		TotalChunks:     d.TotalChunks,
		RequeueAttempts: d.RequeueAttempts,
		Metadata:        d.Metadata,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if !d.ProcessedAt.IsZero() {
		t := d.ProcessedAt
		dto.ProcessedAt = &t
	}
	return dto
}

type domainDTO struct {
	ID            string     `json:"id"`
	Domain        string     `json:"domain"`
	Enabled       bool       `json:"enabled"`
	CrawlDepth    int        `json:"crawlDepth"`
	RecrawlHours  int        `json:"recrawlHours"`
	LastCrawledAt *time.Time `json:"lastCrawledAt,omitempty"`
}

func toDomainDTO(r *domain.DomainRegistration) domainDTO {
	dto := domainDTO{
		ID:           r.ID,
		Domain:       r.Domain,
		Enabled:      r.Enabled,
		CrawlDepth:   r.CrawlDepth,
		RecrawlHours: r.RecrawlHours,
	}
	if !r.LastCrawledAt.IsZero() {
		t := r.LastCrawledAt
		dto.LastCrawledAt = &t
	}
	return dto
}

type searchResultDTO struct {
	ChunkID       string  `json:"chunkId"`
	DocumentID    string  `json:"documentId"`
	DocumentTitle string  `json:"documentTitle"`
	Content       string  `json:"content"`
	Similarity    float64 `json:"similarity"`
}

type searchResponseDTO struct {
	Query   string            `json:"query,omitempty"`
	Intent  string            `json:"intent,omitempty"`
	Results []searchResultDTO `json:"results"`
}

func toSearchResults(results []domain.SearchResult) []searchResultDTO {
	out := make([]searchResultDTO, 0, len(results))
	for i := range results {
		out = append(out, searchResultDTO{
			ChunkID:       results[i].ChunkID,
			DocumentID:    results[i].DocumentID,
			DocumentTitle: results[i].Document.Title,
			Content:       results[i].Content,
			Similarity:    results[i].Score,
		})
	}
	return out
}

type crawlStatusDTO struct {
	State     string `json:"state"`
	Domains   int    `json:"domains"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	Message   string `json:"message,omitempty"`
	LastJobID string `json:"lastJobId,omitempty"`
}

func toCrawlStatusDTO(s *domain.CrawlStatus) crawlStatusDTO {
	dto := crawlStatusDTO{
		State:   string(s.State),
		Domains: s.Domains,
		Pages:   s.Pages,
		Chunks:  s.Chunks,
		Message: s.Message,
	}
	if s.LastJob != nil {
		dto.LastJobID = s.LastJob.ID
	}
	return dto
}
