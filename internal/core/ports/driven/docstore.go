package driven

import (
	"context"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

// DocumentStore persists document records.
// Every method is scoped by tenant; a document of another tenant is reported
// as domain.ErrNotFound.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, tenantID, id string) (*domain.Document, error)

	// ListDocuments returns all documents of a tenant ordered by creation time.
	ListDocuments(ctx context.Context, tenantID string) ([]domain.Document, error)

	// ListByStatus returns a tenant's documents in the given status.
	ListByStatus(ctx context.Context, tenantID string, status domain.DocumentStatus) ([]domain.Document, error)

	// DeleteDocument removes a document. Remaining chunks cascade.
	DeleteDocument(ctx context.Context, tenantID, id string) error

	// ListTenants returns every tenant that owns at least one document.
	ListTenants(ctx context.Context) ([]string, error)
}

// ChunkStore persists chunks and their embeddings.
// Every method is scoped by tenant.
type ChunkStore interface {
	// SaveChunks stores chunks for one document. Every chunk must carry
	// tenantID and the owning document must belong to it, otherwise
	// domain.ErrTenantMismatch is returned and nothing is written.
	SaveChunks(ctx context.Context, tenantID string, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks of a document ordered by position.
	GetChunks(ctx context.Context, tenantID, documentID string) ([]domain.Chunk, error)

	// ListChunks returns a tenant's chunks. With missingOnly set, only
	// chunks without an embedding are returned.
	ListChunks(ctx context.Context, tenantID string, missingOnly bool) ([]domain.Chunk, error)

	// UpdateEmbedding sets the embedding of one chunk.
	UpdateEmbedding(ctx context.Context, tenantID, chunkID string, embedding []float32) error

	// DeleteChunks removes all chunks of a document and returns how many were removed.
	DeleteChunks(ctx context.Context, tenantID, documentID string) (int, error)

	// DeleteChunksByID removes the given chunks in one batch.
	DeleteChunksByID(ctx context.Context, tenantID string, ids []string) (int, error)

	// CountChunks returns the live chunk count of a document.
	CountChunks(ctx context.Context, tenantID, documentID string) (int, error)

	// CountEmbedded returns how many chunks of a document carry an embedding.
	CountEmbedded(ctx context.Context, tenantID, documentID string) (int, error)
}
