// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentStore, ChunkStore: document and chunk persistence
//   - JobStore, DomainStore: crawl bookkeeping
//   - AuditStore: maintenance audit trail
//   - Outbox: post-commit events
//   - ObjectStore: uploaded source files
//   - NormaliserRegistry: text extraction by MIME type
//   - VectorIndex: tenant-scoped similarity search
//   - SchedulerStore: maintenance task state
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: without it processing cannot complete and search is disabled.
//   - Crawler: without it crawl jobs fail with domain.ErrCrawlerUnavailable.
//   - EventSink: without it claimed events are only logged.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
