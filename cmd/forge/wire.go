package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/ai"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/config/env"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/config/file"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/crawler/web"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/objectstore/filesystem"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/objectstore/gcs"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/storage/sqlite"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/webhook"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driving/cli"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/services"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/normalisers"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/postprocessors"
)

// application holds the wired services and the resources to release.
type application struct {
	Services cli.Services
	closers  []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() {
	if a == nil {
		return
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("shutdown: %v", err)
		}
	}
}

// wire builds every adapter and service from the settings found under home.
// An empty home uses ~/.forge.
func wire(ctx context.Context, home string) (_ *application, err error) {
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		home = filepath.Join(userHome, ".forge")
	}

	app := &application{}
	// Failure paths return nil, so cleanup must go through the local.
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	fileStore, err := file.NewConfigStore(home)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(env.New(fileStore))
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(home, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	app.closers = append(app.closers, store.Close)

	objects, err := openObjectStore(ctx, settings.Storage, home)
	if err != nil {
		return nil, err
	}
	if c, ok := objects.(interface{ Close() error }); ok {
		app.closers = append(app.closers, c.Close)
	}

	provider, err := ai.CreateEmbeddingService(&settings.Embedding)
	if err != nil {
		// Processing still registers and chunks documents without a provider.
		logger.Warn("embedding provider unavailable: %v", err)
		provider = nil
	}
	if provider != nil {
		app.closers = append(app.closers, provider.Close)
	}

	pipeline, err := postprocessors.NewIngestPipeline(settings.Chunking)
	if err != nil {
		return nil, fmt.Errorf("building chunk pipeline: %w", err)
	}

	docs := store.DocumentStore()
	chunks := store.ChunkStore()
	audit := store.AuditStore()
	outbox := store.Outbox()

	embedder, err := services.NewEmbedder(provider, chunks, docs, audit, services.EmbedderConfigFrom(settings.Embedding))
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, func() error {
		embedder.Close()
		return nil
	})

	registry := services.NewDocumentRegistry(docs, chunks, objects, audit, outbox)
	processor := services.NewProcessingService(registry, docs, chunks, objects, normalisers.Default(), pipeline, embedder)
	retrieval := services.NewRetrievalService(store.VectorIndex(), docs, embedder)

	crawler := web.New(web.Config{
		UserAgent:         settings.Crawl.UserAgent,
		MaxBodyBytes:      settings.Crawl.MaxBodyBytes,
		RequestsPerSecond: settings.Crawl.RequestsPerSecond,
	})
	crawl := services.NewCrawlScheduler(
		store.DomainStore(), store.JobStore(), docs, registry, processor, crawler, audit, outbox, settings.Crawl,
	)

	var sink driven.EventSink
	if settings.WebhookURL != "" {
		s, err := webhook.New(settings.WebhookURL, 0)
		if err != nil {
			return nil, err
		}
		sink = s
	}
	dispatcher := services.NewEventDispatcher(outbox, sink)

	app.Services = cli.Services{
		Documents:  registry,
		Processor:  processor,
		Retrieval:  retrieval,
		Crawl:      crawl,
		Dedup:      services.NewDeduplicator(registry, docs, chunks, audit),
		Recovery:   services.NewCorruptionRecovery(registry, docs, chunks, audit),
		Embeddings: embedder,
		Requeue: services.NewRequeueOrchestrator(
			registry, docs, chunks, objects, audit, outbox, processor, settings.MaxRequeueAttempts,
		),
		Dispatcher: dispatcher,
		Scheduler:  services.NewScheduler(settings.Scheduler, store.SchedulerStore(), crawl, embedder, dispatcher),
		Settings:   settingsService,
	}
	return app, nil
}

// openObjectStore opens the configured object store backend.
func openObjectStore(ctx context.Context, cfg domain.StorageSettings, home string) (driven.ObjectStore, error) {
	switch cfg.Backend {
	case domain.ObjectStoreGCS:
		if cfg.Bucket == "" {
			return nil, errors.New("storage.bucket is required for the gcs backend")
		}
		store, err := gcs.NewStore(ctx, gcs.Config{Bucket: cfg.Bucket, CredentialsFile: cfg.CredentialsFile})
		if err != nil {
			return nil, fmt.Errorf("opening gcs bucket: %w", err)
		}
		return store, nil
	case domain.ObjectStoreFilesystem, "":
		root := cfg.Root
		if root == "" {
			root = filepath.Join(home, "objects")
		}
		store, err := filesystem.NewStore(root)
		if err != nil {
			return nil, fmt.Errorf("opening object store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, cfg.Backend)
	}
}
