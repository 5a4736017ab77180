package mcp

import (
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval serves similarity search.
	Retrieval driving.RetrievalService

	// Crawl reports crawl status.
	Crawl driving.CrawlService

	// Documents lists an organisation's documents.
	Documents driving.DocumentRegistry
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Crawl and Documents are optional
	return nil
}
