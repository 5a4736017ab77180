package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/logger"
)

// Ensure Embedder implements the interface.
var _ driving.EmbeddingRegenerator = (*Embedder)(nil)

// EmbedderConfig controls batching.
type EmbedderConfig struct {
	// BatchSize is how many chunks are embedded concurrently.
	BatchSize int

	// BatchDelay is the pause after each batch before the next one starts.
	BatchDelay time.Duration

	// MaxInputChars truncates inputs, counted in runes.
	MaxInputChars int
}

// EmbedderConfigFrom builds an EmbedderConfig from settings, applying defaults.
func EmbedderConfigFrom(s domain.EmbeddingSettings) EmbedderConfig {
	d := domain.DefaultSettings().Embedding
	cfg := EmbedderConfig{BatchSize: s.BatchSize, BatchDelay: s.BatchDelay, MaxInputChars: s.MaxInputChars}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = d.BatchSize
	}
	if cfg.BatchDelay < 0 {
		cfg.BatchDelay = d.BatchDelay
	}
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = d.MaxInputChars
	}
	return cfg
}

// Embedder computes chunk embeddings in sequential batches. Chunks inside a
// batch are embedded concurrently on a worker pool.
type Embedder struct {
	provider driven.EmbeddingService
	chunks   driven.ChunkStore
	docs     driven.DocumentStore
	audit    driven.AuditStore
	pool     *ants.Pool
	cfg      EmbedderConfig
}

// NewEmbedder creates an embedder. A nil provider makes every run fail with
// domain.ErrEmbeddingUnavailable. Call Close to release the pool.
func NewEmbedder(
	provider driven.EmbeddingService,
	chunks driven.ChunkStore,
	docs driven.DocumentStore,
	audit driven.AuditStore,
	cfg EmbedderConfig,
) (*Embedder, error) {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultSettings().Embedding.BatchSize
	}
	pool, err := ants.NewPool(cfg.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("embedding pool: %w", err)
	}
	return &Embedder{
		provider: provider,
		chunks:   chunks,
		docs:     docs,
		audit:    audit,
		pool:     pool,
		cfg:      cfg,
	}, nil
}

// Available reports whether an embedding provider is configured.
func (e *Embedder) Available() bool {
	return e != nil && e.provider != nil
}

// ModelName returns the provider's model, or "" without a provider.
func (e *Embedder) ModelName() string {
	if !e.Available() {
		return ""
	}
	return e.provider.ModelName()
}

// Ping checks the provider answers within five seconds.
func (e *Embedder) Ping(ctx context.Context) error {
	if !e.Available() {
		return domain.ErrEmbeddingUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := e.provider.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}

// EmbedQuery embeds a search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if !e.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}
	vec, err := e.provider.Embed(ctx, truncateRunes(text, e.cfg.MaxInputChars))
	if err != nil {
		return nil, err
	}
	if len(vec) != e.provider.Dimensions() {
		return nil, fmt.Errorf("query: got %d, want %d: %w", len(vec), e.provider.Dimensions(), domain.ErrDimensionMismatch)
	}
	return vec, nil
}

// EmbedChunks embeds the given chunks of one tenant and stores the vectors.
// It returns the first per-chunk error so callers can tell transient provider
// failures from bad content.
func (e *Embedder) EmbedChunks(ctx context.Context, tenantID string, chunks []domain.Chunk) (*domain.EmbeddingReport, error) {
	report := &domain.EmbeddingReport{TenantID: tenantID, Mode: domain.EmbedMissingOnly, Total: len(chunks)}
	if !e.Available() {
		return report, domain.ErrEmbeddingUnavailable
	}

	work := make([]domain.Chunk, 0, len(chunks))
	for i := range chunks {
		if strings.TrimSpace(chunks[i].Content) == "" {
			report.Skipped++
			continue
		}
		work = append(work, chunks[i])
	}

	var (
		mu       sync.Mutex
		firstErr error
	)
	fail := func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		report.Failed++
		report.Failures = append(report.Failures, domain.ItemFailure{ID: id, Error: err.Error()})
		if firstErr == nil {
			firstErr = err
		}
		logger.Warn("embed chunk %s: %v", id, err)
	}

	for start := 0; start < len(work); start += e.cfg.BatchSize {
		if start > 0 && e.cfg.BatchDelay > 0 {
			if err := sleepCtx(ctx, e.cfg.BatchDelay); err != nil {
				return report, err
			}
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}

		end := min(start+e.cfg.BatchSize, len(work))
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			chunk := work[i]
			wg.Add(1)
			task := func() {
				defer wg.Done()
				if err := e.embedOne(ctx, tenantID, chunk); err != nil {
					fail(chunk.ID, err)
					return
				}
				mu.Lock()
				report.Embedded++
				mu.Unlock()
			}
			if err := e.pool.Submit(task); err != nil {
				wg.Done()
				fail(chunk.ID, fmt.Errorf("submit: %w", err))
			}
		}
		wg.Wait()
		report.Batches++
	}

	logger.Debug("embedded %d/%d chunks for %s in %d batches", report.Embedded, report.Total, tenantID, report.Batches)
	return report, firstErr
}

func (e *Embedder) embedOne(ctx context.Context, tenantID string, chunk domain.Chunk) error {
	vec, err := e.provider.Embed(ctx, truncateRunes(chunk.Content, e.cfg.MaxInputChars))
	if err != nil {
		return err
	}
	if want := e.provider.Dimensions(); len(vec) != want {
		return fmt.Errorf("got %d, want %d: %w", len(vec), want, domain.ErrDimensionMismatch)
	}
	return e.chunks.UpdateEmbedding(ctx, tenantID, chunk.ID, vec)
}

// Regenerate embeds a tenant's chunks. missing_only touches chunks without a
// vector; force_all recomputes every chunk and is audited.
func (e *Embedder) Regenerate(
	ctx context.Context, tenantID string, mode domain.EmbeddingMode, actor string,
) (*domain.EmbeddingReport, error) {
	if tenantID == "" {
		return nil, domain.ErrInvalidInput
	}
	if mode == "" {
		mode = domain.EmbedMissingOnly
	}
	if mode != domain.EmbedMissingOnly && mode != domain.EmbedForceAll {
		return nil, fmt.Errorf("embedding mode %q: %w", mode, domain.ErrInvalidInput)
	}
	if !e.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	chunks, err := e.chunks.ListChunks(ctx, tenantID, mode == domain.EmbedMissingOnly)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	report, err := e.EmbedChunks(ctx, tenantID, chunks)
	report.Mode = mode
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return report, err
	}

	if mode == domain.EmbedForceAll {
		writeAudit(ctx, e.audit, domain.AuditEntry{
			TenantID:  tenantID,
			Operation: domain.AuditEmbeddingRegen,
			Actor:     actor,
			Summary:   fmt.Sprintf("regenerated %d of %d embeddings", report.Embedded, report.Total),
			Details: map[string]any{
				"mode":     string(mode),
				"model":    e.provider.ModelName(),
				"total":    report.Total,
				"embedded": report.Embedded,
				"skipped":  report.Skipped,
				"failed":   report.Failed,
			},
		})
	}
	return report, nil
}

// Backfill embeds missing chunks for each tenant. With no tenants given,
// every tenant owning documents is backfilled. One tenant failing never
// stops the others; failures are joined into the returned error.
func (e *Embedder) Backfill(ctx context.Context, tenantIDs []string) ([]domain.EmbeddingReport, error) {
	if !e.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(tenantIDs) == 0 {
		var err error
		tenantIDs, err = e.docs.ListTenants(ctx)
		if err != nil {
			return nil, fmt.Errorf("list tenants: %w", err)
		}
	}

	var (
		reports []domain.EmbeddingReport
		errs    []error
	)
	for _, tenantID := range tenantIDs {
		report, err := e.Regenerate(ctx, tenantID, domain.EmbedMissingOnly, domain.ActorSystem)
		if err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		reports = append(reports, *report)
	}
	return reports, errors.Join(errs...)
}

// Close releases the worker pool.
func (e *Embedder) Close() {
	e.pool.Release()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
