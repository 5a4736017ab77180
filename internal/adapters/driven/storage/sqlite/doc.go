// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. It implements every persistence port through a single database connection:
//
//   - DocumentStore and ChunkStore: documents, chunks and embeddings
//   - VectorIndex: tenant-scoped cosine similarity over stored embeddings
//   - JobStore and DomainStore: crawl registrations and ingest jobs
//   - AuditStore and Outbox: audit trail and post-commit events
//   - SchedulerStore: scheduled task state and run history
//
// # Schema
//
// The schema is managed through versioned migrations stored in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files; applied
// versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.forge/data/forge.db
//
// # Tenancy
//
// Every query filters on tenant_id. A row of another tenant is reported as
// domain.ErrNotFound, never returned.
package sqlite
