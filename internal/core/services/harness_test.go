package services

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/storage/memory"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driving"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/normalisers"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/postprocessors"
)

const fakeDims = 16

// fakeEmbeddingService returns a deterministic bag-of-words vector, so
// identical texts have similarity 1 and disjoint texts similarity 0.
type fakeEmbeddingService struct {
	mu       sync.Mutex
	calls    int
	failures int
	failErr  error
	dims     int
}

var _ driven.EmbeddingService = (*fakeEmbeddingService)(nil)

func newFakeEmbeddingService() *fakeEmbeddingService {
	return &fakeEmbeddingService{dims: fakeDims}
}

// failNext makes the next n calls return err.
func (f *fakeEmbeddingService) failNext(n int, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = n
	f.failErr = err
}

func (f *fakeEmbeddingService) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		err := f.failErr
		f.mu.Unlock()
		return nil, err
	}
	dims := f.dims
	f.mu.Unlock()
	return vectorFor(text, dims), nil
}

func (f *fakeEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbeddingService) Dimensions() int { return fakeDims }
func (f *fakeEmbeddingService) ModelName() string { return "fake-embed" }
func (f *fakeEmbeddingService) Ping(_ context.Context) error { return nil }
func (f *fakeEmbeddingService) Close() error { return nil }

// vectorFor hashes each lower-cased word into one of dims buckets and
// normalises the result.
func vectorFor(text string, dims int) []float32 {
	vec := make([]float32, dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,;:!?")))
		vec[h.Sum32()%uint32(dims)]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}

// harness wires the services over in-memory stores.
type harness struct {
	docs     *memory.DocumentStore
	objects  *memory.ObjectStore
	audit    *memory.AuditStore
	outbox   *memory.Outbox
	jobs     *memory.JobStore
	domains  *memory.DomainStore
	provider *fakeEmbeddingService

	registry  *DocumentRegistry
	embedder  *Embedder
	processor *ProcessingService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		docs:     memory.NewDocumentStore(),
		objects:  memory.NewObjectStore(),
		audit:    memory.NewAuditStore(),
		outbox:   memory.NewOutbox(),
		jobs:     memory.NewJobStore(),
		domains:  memory.NewDomainStore(),
		provider: newFakeEmbeddingService(),
	}
	h.registry = NewDocumentRegistry(h.docs, h.docs, h.objects, h.audit, h.outbox)

	embedder, err := NewEmbedder(h.provider, h.docs, h.docs, h.audit, EmbedderConfig{BatchSize: 2, MaxInputChars: 8000})
	require.NoError(t, err)
	t.Cleanup(embedder.Close)
	h.embedder = embedder

	pipeline, err := postprocessors.NewIngestPipeline(domain.ChunkSettings{Size: 200, Overlap: 20})
	require.NoError(t, err)
	h.processor = NewProcessingService(h.registry, h.docs, h.docs, h.objects, normalisers.Default(), pipeline, h.embedder)
	return h
}

// upload registers a plain text file.
func (h *harness) upload(t *testing.T, tenantID, fileName, content string) *domain.Document {
	t.Helper()
	doc, err := h.registry.Register(context.Background(), driving.RegisterRequest{
		TenantID: tenantID,
		FileName: fileName,
		MimeType: "text/plain",
		Content:  []byte(content),
	})
	require.NoError(t, err)
	return doc
}

// seed stores a document and embedded chunks directly, bypassing processing.
func (h *harness) seed(
	t *testing.T, tenantID, title string, status domain.DocumentStatus, created time.Time, contents ...string,
) *domain.Document {
	t.Helper()
	ctx := context.Background()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Title:       title,
		FileName:    domain.SanitizeFileName(title + ".txt"),
		MimeType:    "text/plain",
		Status:      status,
		TotalChunks: len(contents),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	doc.StoragePath = domain.CanonicalPath(tenantID, doc.FileName)
	require.NoError(t, h.docs.SaveDocument(ctx, doc))

	chunks := make([]domain.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			TenantID:   tenantID,
			Content:    content,
			Position:   i,
			Embedding:  vectorFor(content, fakeDims),
		}
	}
	require.NoError(t, h.docs.SaveChunks(ctx, tenantID, chunks))
	return doc
}

func (h *harness) document(t *testing.T, tenantID, id string) *domain.Document {
	t.Helper()
	doc, err := h.docs.GetDocument(context.Background(), tenantID, id)
	require.NoError(t, err)
	return doc
}

func (h *harness) chunkCount(t *testing.T, tenantID, id string) int {
	t.Helper()
	n, err := h.docs.CountChunks(context.Background(), tenantID, id)
	require.NoError(t, err)
	return n
}

func (h *harness) auditOps(tenantID string) []domain.AuditOperation {
	var ops []domain.AuditOperation
	for _, e := range h.audit.All() {
		if e.TenantID == tenantID {
			ops = append(ops, e.Operation)
		}
	}
	return ops
}

func (h *harness) eventTypes() []domain.EventType {
	var types []domain.EventType
	for _, e := range h.outbox.Events() {
		types = append(types, e.Type)
	}
	return types
}

const policyText = "The information security policy requires annual review by the board. " +
	"Access to production systems is granted on least privilege and revoked on exit."
