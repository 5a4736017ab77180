package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// ==================== Chunk Store ====================

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// SaveChunks stores chunks in one transaction. Either every chunk is written
// or none is.
func (s *chunkStore) SaveChunks(ctx context.Context, tenantID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	owners := make(map[string]bool)
	for i := range chunks {
		if chunks[i].TenantID != tenantID {
			return fmt.Errorf("chunk %s: %w", chunks[i].ID, domain.ErrTenantMismatch)
		}
		owners[chunks[i].DocumentID] = true
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for docID := range owners {
		var owner string
		err := tx.QueryRowContext(ctx, "SELECT tenant_id FROM documents WHERE id = ?", docID).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("document %s: %w", docID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("checking document owner: %w", err)
		}
		if owner != tenantID {
			return fmt.Errorf("document %s: %w", docID, domain.ErrTenantMismatch)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_id, tenant_id, content, position, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			position = excluded.position,
			embedding = excluded.embedding,
			metadata = excluded.metadata
		WHERE chunks.tenant_id = excluded.tenant_id AND chunks.document_id = excluded.document_id
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := marshalJSON(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		res, err := stmt.ExecContext(ctx, chunk.ID, chunk.DocumentID, tenantID, chunk.Content,
			chunk.Position, float32SliceToBytes(chunk.Embedding), metadataJSON)
		if err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("chunk %s: %w", chunk.ID, domain.ErrTenantMismatch)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetChunks retrieves all chunks of a document ordered by position.
func (s *chunkStore) GetChunks(ctx context.Context, tenantID, documentID string) ([]domain.Chunk, error) {
	return s.queryChunks(ctx, `
		SELECT id, document_id, tenant_id, content, position, embedding, metadata
		FROM chunks WHERE tenant_id = ? AND document_id = ?
		ORDER BY position
	`, tenantID, documentID)
}

// ListChunks returns a tenant's chunks, optionally only those without an embedding.
func (s *chunkStore) ListChunks(ctx context.Context, tenantID string, missingOnly bool) ([]domain.Chunk, error) {
	query := `
		SELECT id, document_id, tenant_id, content, position, embedding, metadata
		FROM chunks WHERE tenant_id = ?`
	if missingOnly {
		query += ` AND embedding IS NULL`
	}
	query += ` ORDER BY document_id, position`
	return s.queryChunks(ctx, query, tenantID)
}

// UpdateEmbedding sets the embedding of one chunk.
func (s *chunkStore) UpdateEmbedding(ctx context.Context, tenantID, chunkID string, embedding []float32) error {
	if len(embedding) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	res, err := s.store.db.ExecContext(ctx,
		"UPDATE chunks SET embedding = ? WHERE tenant_id = ? AND id = ?",
		float32SliceToBytes(embedding), tenantID, chunkID)
	if err != nil {
		return fmt.Errorf("updating embedding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteChunks removes all chunks of a document.
func (s *chunkStore) DeleteChunks(ctx context.Context, tenantID, documentID string) (int, error) {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE tenant_id = ? AND document_id = ?", tenantID, documentID)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(n), nil
}

// DeleteChunksByID removes the given chunks in one batch.
func (s *chunkStore) DeleteChunksByID(ctx context.Context, tenantID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := make([]any, 0, len(ids)+1)
	args = append(args, tenantID)
	for _, id := range ids {
		args = append(args, id)
	}

	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE tenant_id = ? AND id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("deleting chunks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(n), nil
}

// CountChunks returns the live chunk count of a document.
func (s *chunkStore) CountChunks(ctx context.Context, tenantID, documentID string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE tenant_id = ? AND document_id = ?",
		tenantID, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// CountEmbedded returns how many chunks of a document carry an embedding.
func (s *chunkStore) CountEmbedded(ctx context.Context, tenantID, documentID string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE tenant_id = ? AND document_id = ? AND embedding IS NOT NULL",
		tenantID, documentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting embedded chunks: %w", err)
	}
	return n, nil
}

func (s *chunkStore) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	return chunks, nil
}

// scanChunk scans a chunk row.
func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var embeddingBlob []byte
	var metadataJSON sql.NullString

	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.TenantID, &chunk.Content,
		&chunk.Position, &embeddingBlob, &metadataJSON); err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}

	chunk.Embedding = bytesToFloat32Slice(embeddingBlob)

	if err := unmarshalJSON(metadataJSON, &chunk.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling chunk metadata: %w", err)
	}

	return &chunk, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex with a brute-force cosine scan
// over the tenant's embedded chunks.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Search returns at most k chunks scoring at least minScore, best first.
func (v *vectorIndex) Search(
	ctx context.Context,
	tenantID string,
	query []float32,
	k int,
	minScore float64,
) ([]driven.VectorHit, error) {
	if tenantID == "" || len(query) == 0 || k <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, document_id, content, embedding
		FROM chunks WHERE tenant_id = ? AND embedding IS NOT NULL
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	hits := []driven.VectorHit{}
	for rows.Next() {
		var hit driven.VectorHit
		var blob []byte
		if err := rows.Scan(&hit.ChunkID, &hit.DocumentID, &hit.Content, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		emb := bytesToFloat32Slice(blob)
		if len(emb) != len(query) {
			continue
		}
		hit.Similarity = domain.CosineSimilarity(query, emb)
		if hit.Similarity < minScore {
			continue
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
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
