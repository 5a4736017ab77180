package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interfaces.
var (
	_ driven.DocumentStore = (*DocumentStore)(nil)
	_ driven.ChunkStore    = (*DocumentStore)(nil)
	_ driven.VectorIndex   = (*DocumentStore)(nil)
)

// DocumentStore is an in-memory implementation of driven.DocumentStore,
// driven.ChunkStore and driven.VectorIndex.
// Values are copied on the way in and out so callers cannot alias stored state.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
	}
}

// SaveDocument stores or updates a document. A document cannot change tenant.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.TenantID == "" || !doc.Status.IsValid() {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.documents[doc.ID]; ok && existing.TenantID != doc.TenantID {
		return domain.ErrTenantMismatch
	}
	stored := *doc
	stored.Content = ""
	stored.Metadata = copyMap(doc.Metadata)
	s.documents[doc.ID] = stored
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, tenantID, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok || doc.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	doc.Metadata = copyMap(doc.Metadata)
	return &doc, nil
}

// ListDocuments returns a tenant's documents ordered by creation time.
func (s *DocumentStore) ListDocuments(_ context.Context, tenantID string) ([]domain.Document, error) {
	return s.filterDocuments(func(d *domain.Document) bool { return d.TenantID == tenantID }), nil
}

// ListByStatus returns a tenant's documents in the given status.
func (s *DocumentStore) ListByStatus(_ context.Context, tenantID string, status domain.DocumentStatus) ([]domain.Document, error) {
	return s.filterDocuments(func(d *domain.Document) bool {
		return d.TenantID == tenantID && d.Status == status
	}), nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, tenantID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[id]
	if !ok || doc.TenantID != tenantID {
		return domain.ErrNotFound
	}
	delete(s.documents, id)
	for chunkID, c := range s.chunks {
		if c.DocumentID == id {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// ListTenants returns every tenant owning at least one document, sorted.
func (s *DocumentStore) ListTenants(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]bool)
	var tenants []string
	for id := range s.documents {
		t := s.documents[id].TenantID
		if !seen[t] {
			seen[t] = true
			tenants = append(tenants, t)
		}
	}
	sort.Strings(tenants)
	return tenants, nil
}

func (s *DocumentStore) filterDocuments(keep func(*domain.Document) bool) []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if keep(&doc) {
			doc.Metadata = copyMap(doc.Metadata)
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// ==================== Chunks ====================

// SaveChunks stores chunks. Every chunk must belong to tenantID and to a
// document of tenantID, otherwise nothing is written.
func (s *DocumentStore) SaveChunks(_ context.Context, tenantID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		c := &chunks[i]
		if c.ID == "" || c.DocumentID == "" {
			return domain.ErrInvalidInput
		}
		if c.TenantID != tenantID {
			return domain.ErrTenantMismatch
		}
		doc, ok := s.documents[c.DocumentID]
		if !ok {
			return domain.ErrNotFound
		}
		if doc.TenantID != tenantID {
			return domain.ErrTenantMismatch
		}
	}
	for i := range chunks {
		s.chunks[chunks[i].ID] = copyChunk(chunks[i])
	}
	return nil
}

// GetChunks retrieves a document's chunks ordered by position.
func (s *DocumentStore) GetChunks(_ context.Context, tenantID, documentID string) ([]domain.Chunk, error) {
	return s.filterChunks(func(c *domain.Chunk) bool {
		return c.TenantID == tenantID && c.DocumentID == documentID
	}), nil
}

// ListChunks returns a tenant's chunks, optionally only those without an embedding.
func (s *DocumentStore) ListChunks(_ context.Context, tenantID string, missingOnly bool) ([]domain.Chunk, error) {
	return s.filterChunks(func(c *domain.Chunk) bool {
		return c.TenantID == tenantID && (!missingOnly || !c.HasEmbedding())
	}), nil
}

// UpdateEmbedding sets the embedding of one chunk.
func (s *DocumentStore) UpdateEmbedding(_ context.Context, tenantID, chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chunks[chunkID]
	if !ok || c.TenantID != tenantID {
		return domain.ErrNotFound
	}
	c.Embedding = append([]float32(nil), embedding...)
	s.chunks[chunkID] = c
	return nil
}

// DeleteChunks removes all chunks of a document.
func (s *DocumentStore) DeleteChunks(_ context.Context, tenantID, documentID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, c := range s.chunks {
		if c.TenantID == tenantID && c.DocumentID == documentID {
			delete(s.chunks, id)
			n++
		}
	}
	return n, nil
}

// DeleteChunksByID removes the given chunks of tenantID.
func (s *DocumentStore) DeleteChunksByID(_ context.Context, tenantID string, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range ids {
		if c, ok := s.chunks[id]; ok && c.TenantID == tenantID {
			delete(s.chunks, id)
			n++
		}
	}
	return n, nil
}

// CountChunks returns the live chunk count of a document.
func (s *DocumentStore) CountChunks(_ context.Context, tenantID, documentID string) (int, error) {
	return s.countChunks(tenantID, documentID, false), nil
}

// CountEmbedded returns how many chunks of a document carry an embedding.
func (s *DocumentStore) CountEmbedded(_ context.Context, tenantID, documentID string) (int, error) {
	return s.countChunks(tenantID, documentID, true), nil
}

func (s *DocumentStore) countChunks(tenantID, documentID string, embeddedOnly bool) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for id := range s.chunks {
		c := s.chunks[id]
		if c.TenantID == tenantID && c.DocumentID == documentID && (!embeddedOnly || c.HasEmbedding()) {
			n++
		}
	}
	return n
}

func (s *DocumentStore) filterChunks(keep func(*domain.Chunk) bool) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Chunk
	for id := range s.chunks {
		c := s.chunks[id]
		if keep(&c) {
			result = append(result, copyChunk(c))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DocumentID != result[j].DocumentID {
			return result[i].DocumentID < result[j].DocumentID
		}
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// ==================== Vector Search ====================

// Search scans the tenant's embedded chunks by cosine similarity.
func (s *DocumentStore) Search(
	_ context.Context, tenantID string, query []float32, k int, minScore float64,
) ([]driven.VectorHit, error) {
	hits := []driven.VectorHit{}
	if len(query) == 0 || k <= 0 {
		return hits, nil
	}

	s.mu.RLock()
	for id := range s.chunks {
		c := s.chunks[id]
		if c.TenantID != tenantID || len(c.Embedding) != len(query) {
			continue
		}
		sim := domain.CosineSimilarity(query, c.Embedding)
		if sim < minScore {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Content:    c.Content,
			Similarity: sim,
		})
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func copyChunk(c domain.Chunk) domain.Chunk {
	if c.Embedding != nil {
		c.Embedding = append([]float32(nil), c.Embedding...)
	}
	c.Metadata = copyMap(c.Metadata)
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
