package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

const documentColumns = `id, tenant_id, title, file_name, storage_path, mime_type, status,
	total_chunks, requeue_attempts, metadata, created_at, updated_at, processed_at`

// SaveDocument stores or updates a document.
// Content is transient and never written.
func (s *documentStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc == nil || doc.ID == "" || doc.TenantID == "" {
		return domain.ErrInvalidInput
	}
	if !doc.Status.IsValid() {
		return fmt.Errorf("%w: status %q", domain.ErrInvalidInput, doc.Status)
	}

	metadataJSON, err := marshalJSON(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}

	// The tenant never changes once a document exists.
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, tenant_id, title, normalized_title, file_name, storage_path, mime_type,
			status, total_chunks, requeue_attempts, metadata, created_at, updated_at, processed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			normalized_title = excluded.normalized_title,
			file_name = excluded.file_name,
			storage_path = excluded.storage_path,
			mime_type = excluded.mime_type,
			status = excluded.status,
			total_chunks = excluded.total_chunks,
			requeue_attempts = excluded.requeue_attempts,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at,
			processed_at = excluded.processed_at
		WHERE documents.tenant_id = excluded.tenant_id
	`, doc.ID, doc.TenantID, doc.Title, doc.NormalizedTitle(), doc.FileName, doc.StoragePath, doc.MimeType,
		string(doc.Status), doc.TotalChunks, doc.RequeueAttempts, metadataJSON,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt), formatNullableTime(doc.ProcessedAt))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("saving document %s: %w", doc.ID, domain.ErrTenantMismatch)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *documentStore) GetDocument(ctx context.Context, tenantID, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE tenant_id = ? AND id = ?
	`, tenantID, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return doc, err
}

// ListDocuments returns all documents of a tenant ordered by creation time.
func (s *documentStore) ListDocuments(ctx context.Context, tenantID string) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE tenant_id = ?
		ORDER BY created_at, id
	`, tenantID)
}

// ListByStatus returns a tenant's documents in the given status.
func (s *documentStore) ListByStatus(
	ctx context.Context,
	tenantID string,
	status domain.DocumentStatus,
) ([]domain.Document, error) {
	return s.queryDocuments(ctx, `
		SELECT `+documentColumns+`
		FROM documents WHERE tenant_id = ? AND status = ?
		ORDER BY created_at, id
	`, tenantID, string(status))
}

// DeleteDocument removes a document. Remaining chunks cascade.
func (s *documentStore) DeleteDocument(ctx context.Context, tenantID, id string) error {
	res, err := s.store.db.ExecContext(ctx,
		"DELETE FROM documents WHERE tenant_id = ? AND id = ?", tenantID, id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListTenants returns every tenant that owns at least one document.
func (s *documentStore) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT DISTINCT tenant_id FROM documents ORDER BY tenant_id")
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	defer rows.Close()

	var tenants []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tenants: %w", err)
	}
	return tenants, nil
}

func (s *documentStore) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// scanDocument scans a single document row. sql.ErrNoRows is returned unwrapped.
func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status, createdAt, updatedAt string
	var metadataJSON, processedAt sql.NullString

	if err := row.Scan(&doc.ID, &doc.TenantID, &doc.Title, &doc.FileName, &doc.StoragePath,
		&doc.MimeType, &status, &doc.TotalChunks, &doc.RequeueAttempts, &metadataJSON,
		&createdAt, &updatedAt, &processedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	doc.CreatedAt = parseTime(createdAt)
	doc.UpdatedAt = parseTime(updatedAt)
	doc.ProcessedAt = parseNullableTime(processedAt)

	if err := unmarshalJSON(metadataJSON, &doc.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshaling metadata: %w", err)
	}

	return &doc, nil
}
