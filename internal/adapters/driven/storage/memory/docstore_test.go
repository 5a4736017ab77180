package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

func newDoc(tenantID, id string, created time.Time) *domain.Document {
	return &domain.Document{
		ID:        id,
		TenantID:  tenantID,
		Title:     "Doc " + id,
		FileName:  id + ".txt",
		Status:    domain.StatusPending,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func chunk(tenantID, docID, id string, pos int, emb []float32) domain.Chunk {
	return domain.Chunk{ID: id, DocumentID: docID, TenantID: tenantID, Content: "content " + id, Position: pos, Embedding: emb}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	doc := newDoc("org-1", "doc-1", time.Now())
	doc.Content = "transient"
	doc.Metadata = map[string]any{"source_url": "https://example.org"}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Doc doc-1", got.Title)
	assert.Empty(t, got.Content)
	assert.Equal(t, "https://example.org", got.Metadata["source_url"])

	// Returned metadata is a copy.
	got.Metadata["source_url"] = "changed"
	again, err := store.GetDocument(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "https://example.org", again.Metadata["source_url"])
}

func TestDocumentStore_TenantIsolation(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "doc-1", time.Now())))

	_, err := store.GetDocument(ctx, "org-2", "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.DeleteDocument(ctx, "org-2", "doc-1"), domain.ErrNotFound)

	moved := newDoc("org-2", "doc-1", time.Now())
	assert.ErrorIs(t, store.SaveDocument(ctx, moved), domain.ErrTenantMismatch)
}

func TestDocumentStore_SaveDocument_Invalid(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveDocument(ctx, nil), domain.ErrInvalidInput)
	bad := newDoc("org-1", "doc-1", time.Now())
	bad.Status = "archived"
	assert.ErrorIs(t, store.SaveDocument(ctx, bad), domain.ErrInvalidInput)
}

func TestDocumentStore_ListOrderAndStatus(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "b", base.Add(time.Minute))))
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "a", base)))
	done := newDoc("org-1", "c", base.Add(2*time.Minute))
	done.Status = domain.StatusCompleted
	require.NoError(t, store.SaveDocument(ctx, done))
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-2", "x", base)))

	docs, err := store.ListDocuments(ctx, "org-1")
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})

	pending, err := store.ListByStatus(ctx, "org-1", domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	tenants, err := store.ListTenants(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"org-1", "org-2"}, tenants)
}

func TestDocumentStore_SaveChunks_TenantMismatch(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "doc-1", time.Now())))
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-2", "doc-2", time.Now())))

	err := store.SaveChunks(ctx, "org-1", []domain.Chunk{
		chunk("org-1", "doc-1", "c1", 0, nil),
		chunk("org-2", "doc-1", "c2", 1, nil),
	})
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)

	// Chunk claims org-1 but the parent belongs to org-2.
	err = store.SaveChunks(ctx, "org-1", []domain.Chunk{chunk("org-1", "doc-2", "c3", 0, nil)})
	assert.ErrorIs(t, err, domain.ErrTenantMismatch)

	n, err := store.CountChunks(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Zero(t, n, "nothing written on mismatch")
}

func TestDocumentStore_ChunkLifecycle(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "doc-1", time.Now())))

	require.NoError(t, store.SaveChunks(ctx, "org-1", []domain.Chunk{
		chunk("org-1", "doc-1", "c2", 1, nil),
		chunk("org-1", "doc-1", "c1", 0, []float32{1, 0}),
		chunk("org-1", "doc-1", "c3", 2, nil),
	}))

	chunks, err := store.GetChunks(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "c1", chunks[0].ID)

	missing, err := store.ListChunks(ctx, "org-1", true)
	require.NoError(t, err)
	assert.Len(t, missing, 2)

	require.NoError(t, store.UpdateEmbedding(ctx, "org-1", "c2", []float32{0, 1}))
	assert.ErrorIs(t, store.UpdateEmbedding(ctx, "org-1", "c3", nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.UpdateEmbedding(ctx, "org-2", "c3", []float32{1}), domain.ErrNotFound)

	embedded, err := store.CountEmbedded(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, embedded)

	removed, err := store.DeleteChunksByID(ctx, "org-1", []string{"c3", "unknown"})
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = store.DeleteChunks(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	count, err := store.CountChunks(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDocumentStore_DeleteDocumentCascades(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "doc-1", time.Now())))
	require.NoError(t, store.SaveChunks(ctx, "org-1", []domain.Chunk{chunk("org-1", "doc-1", "c1", 0, nil)}))

	require.NoError(t, store.DeleteDocument(ctx, "org-1", "doc-1"))

	chunks, err := store.ListChunks(ctx, "org-1", false)
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_Search(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "doc-1", time.Now())))
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-2", "doc-2", time.Now())))
	require.NoError(t, store.SaveChunks(ctx, "org-1", []domain.Chunk{
		chunk("org-1", "doc-1", "exact", 0, []float32{1, 0}),
		chunk("org-1", "doc-1", "close", 1, []float32{0.9, 0.1}),
		chunk("org-1", "doc-1", "far", 2, []float32{0, 1}),
		chunk("org-1", "doc-1", "none", 3, nil),
		chunk("org-1", "doc-1", "wrong-dim", 4, []float32{1, 0, 0}),
	}))
	require.NoError(t, store.SaveChunks(ctx, "org-2", []domain.Chunk{
		chunk("org-2", "doc-2", "other-tenant", 0, []float32{1, 0}),
	}))

	hits, err := store.Search(ctx, "org-1", []float32{1, 0}, 10, 0.7)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "exact", hits[0].ChunkID)
	assert.Equal(t, "close", hits[1].ChunkID)
	assert.GreaterOrEqual(t, hits[0].Similarity, hits[1].Similarity)

	hits, err = store.Search(ctx, "org-1", []float32{1, 0}, 1, 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = store.Search(ctx, "org-3", []float32{1, 0}, 5, 0)
	require.NoError(t, err)
	assert.NotNil(t, hits)
	assert.Empty(t, hits)
}

func TestDocumentStore_ConcurrentAccess(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, newDoc("org-1", "doc-1", time.Now())))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i))
			_ = store.SaveChunks(ctx, "org-1", []domain.Chunk{chunk("org-1", "doc-1", id, i, []float32{1, float32(i)})})
			_, _ = store.Search(ctx, "org-1", []float32{1, 0}, 5, 0)
		}(i)
	}
	wg.Wait()

	n, err := store.CountChunks(ctx, "org-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 20, n)
}
