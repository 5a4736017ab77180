package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// SearchInput is the input schema for the search_knowledge tool.
type SearchInput struct {
	OrganizationID string   `json:"organization_id" jsonschema:"the organisation whose knowledge is searched"`
	Query          string   `json:"query" jsonschema:"the question or keywords to search for"`
	MatchCount     int      `json:"match_count,omitempty" jsonschema:"maximum number of passages to return (default 5, max 50)"`
	MinScore       *float64 `json:"min_score,omitempty" jsonschema:"minimum cosine similarity; omit for 0.7, 0 returns every match"`
}

// SearchOutput is the output schema for the search_knowledge tool.
type SearchOutput struct {
	Intent  string               `json:"intent"`
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved passage.
type SearchResultOutput struct {
	ChunkID    string  `json:"chunk_id"`
	DocumentID string  `json:"document_id"`
	Title      string  `json:"title"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// CrawlStatusInput is the input schema for the crawl_status tool.
type CrawlStatusInput struct {
	OrganizationID string `json:"organization_id" jsonschema:"the organisation to report on"`
}

// CrawlStatusOutput is the output schema for the crawl_status tool.
type CrawlStatusOutput struct {
	State     string `json:"state"`
	Domains   int    `json:"domains"`
	Pages     int    `json:"pages"`
	Chunks    int    `json:"chunks"`
	Message   string `json:"message,omitempty"`
	LastJobID string `json:"last_job_id,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search an organisation's documents and crawled pages for relevant passages",
	}, s.handleSearch)

	if s.ports.Crawl != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "crawl_status",
			Description: "Report how far an organisation's web crawl has progressed",
		}, s.handleCrawlStatus)
	}
}

// handleSearch handles the search_knowledge tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		return nil, SearchOutput{}, errOrganizationRequired
	}

	resp, err := s.ports.Retrieval.SearchText(ctx, orgID, input.Query, input.MatchCount, domain.MinScoreOrDefault(input.MinScore))
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Intent:  string(resp.Intent),
		Results: make([]SearchResultOutput, len(resp.Results)),
		Count:   len(resp.Results),
	}
	for i := range resp.Results {
		r := &resp.Results[i]
		output.Results[i] = SearchResultOutput{
			ChunkID:    r.ChunkID,
			DocumentID: r.DocumentID,
			Title:      r.Document.Title,
			Score:      r.Score,
			Content:    r.Content,
		}
	}

	return nil, output, nil
}

// handleCrawlStatus handles the crawl_status tool invocation.
func (s *Server) handleCrawlStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CrawlStatusInput,
) (*mcp.CallToolResult, CrawlStatusOutput, error) {
	orgID := strings.TrimSpace(input.OrganizationID)
	if orgID == "" {
		return nil, CrawlStatusOutput{}, errOrganizationRequired
	}

	status, err := s.ports.Crawl.Status(ctx, orgID)
	if err != nil {
		return nil, CrawlStatusOutput{}, err
	}

	output := CrawlStatusOutput{
		State:   string(status.State),
		Domains: status.Domains,
		Pages:   status.Pages,
		Chunks:  status.Chunks,
		Message: status.Message,
	}
	if status.LastJob != nil {
		output.LastJobID = status.LastJob.ID
	}
	return nil, output, nil
}
