package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

func TestExtractOrganizationID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{
			name:     "valid organisation documents URI",
			uri:      "forge://organizations/org-123/documents",
			expected: "org-123",
		},
		{
			name:     "invalid prefix",
			uri:      "file://organizations/org-123/documents",
			expected: "",
		},
		{
			name:     "missing documents suffix",
			uri:      "forge://organizations/org-123",
			expected: "",
		},
		{
			name:     "nested path",
			uri:      "forge://organizations/org-1/x/documents",
			expected: "",
		},
		{
			name:     "empty URI",
			uri:      "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractOrganizationID(tt.uri)
			assert.Equal(t, tt.expected, result)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("nil document registry returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("forge://organizations/org-1/documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("invalid URI returns not found", func(t *testing.T) {
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: &mockDocumentRegistry{}})
		require.NoError(t, err)

		req := makeReadResourceRequest("forge://invalid/uri")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
	})

	t.Run("returns documents with status", func(t *testing.T) {
		mockDocs := &mockDocumentRegistry{
			documents: []domain.Document{
				{ID: "doc-1", Title: "Org Profile", Status: domain.StatusCompleted, TotalChunks: 6},
				{ID: "doc-2", Title: "Risk Register", Status: domain.StatusPending},
			},
		}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: mockDocs})
		require.NoError(t, err)

		req := makeReadResourceRequest("forge://organizations/org-1/documents")
		result, err := server.handleDocumentsResource(ctx, req)

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.Contains(t, result.Contents[0].Text, "Org Profile")
		assert.Contains(t, result.Contents[0].Text, `"status": "pending"`)
		assert.Contains(t, result.Contents[0].Text, `"total_chunks": 6`)
		assert.Equal(t, "org-1", mockDocs.tenantID)
	})

	t.Run("returns error on list failure", func(t *testing.T) {
		mockDocs := &mockDocumentRegistry{err: errors.New("database error")}
		server, err := NewServer(&Ports{Retrieval: &mockRetrievalService{}, Documents: mockDocs})
		require.NoError(t, err)

		req := makeReadResourceRequest("forge://organizations/org-1/documents")
		_, err = server.handleDocumentsResource(ctx, req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "listing documents")
	})
}
