// Package domain defines the core business entities of the ingestion and
// retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: an uploaded file or crawled page and its processing state
//   - Chunk: an embeddable passage scoped to a document and tenant
//   - IngestJob: one tracked crawl or extract run
//   - DomainRegistration: an allow-listed crawl target
//   - AuditEntry, OutboxEvent: records of maintenance and state changes
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
