// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Document lifecycle: DocumentRegistry owns status transitions,
// ProcessingService runs extract, chunk, filter, embed and complete,
// and the maintenance services (Deduplicator, CorruptionRecovery,
// Embedder, RequeueOrchestrator) repair what is already stored.
// CrawlScheduler feeds crawled pages through the same path.
//
// Services are pure Go with no CGO dependencies.
package services
