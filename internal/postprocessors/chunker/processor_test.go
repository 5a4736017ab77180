package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

func policyDoc(content string) *domain.Document {
	return &domain.Document{ID: "doc-1", TenantID: "org-1", Content: content}
}

func TestNew_Options(t *testing.T) {
	tests := []struct {
		name        string
		opts        []Option
		wantSize    int
		wantOverlap int
	}{
		{"defaults", nil, DefaultChunkSize, DefaultChunkOverlap},
		{"custom size", []Option{WithChunkSize(500)}, 500, DefaultChunkOverlap},
		{"custom overlap", []Option{WithOverlap(100)}, DefaultChunkSize, 100},
		{"overlap not below size is reduced", []Option{WithChunkSize(100), WithOverlap(150)}, 100, 25},
		{"non-positive values ignored", []Option{WithChunkSize(0), WithOverlap(-1)}, DefaultChunkSize, DefaultChunkOverlap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.opts...)
			assert.Equal(t, tt.wantSize, p.chunkSize)
			assert.Equal(t, tt.wantOverlap, p.overlap)
		})
	}
}

func TestProcessor_Name(t *testing.T) {
	assert.Equal(t, "chunker", New().Name())
}

func TestProcessor_Process_BlankContent(t *testing.T) {
	for _, content := range []string{"", "   \n\t  "} {
		chunks, err := New().Process(context.Background(), policyDoc(content), nil)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestProcessor_Process_ShortDocument(t *testing.T) {
	doc := policyDoc("Access reviews are performed quarterly by the data owner.")

	chunks, err := New(WithChunkSize(100), WithOverlap(20)).Process(context.Background(), doc, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	c := chunks[0]
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "doc-1", c.DocumentID)
	assert.Equal(t, "org-1", c.TenantID)
	assert.Equal(t, doc.Content, c.Content)
	assert.Equal(t, 0, c.Position)
	assert.NotNil(t, c.Metadata)
	assert.Nil(t, c.Embedding)
}

func TestProcessor_Process_SplitsWithOverlap(t *testing.T) {
	doc := policyDoc(strings.Repeat("x", 250))

	chunks, err := New(WithChunkSize(100), WithOverlap(20)).Process(context.Background(), doc, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	lengths := []int{len(chunks[0].Content), len(chunks[1].Content), len(chunks[2].Content)}
	assert.Equal(t, []int{100, 100, 90}, lengths)
	for i, c := range chunks {
		assert.Equal(t, i, c.Position)
	}
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}

func TestProcessor_Process_ExactChunkSize(t *testing.T) {
	chunks, err := New(WithChunkSize(100)).Process(context.Background(), policyDoc(strings.Repeat("y", 100)), nil)

	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestProcessor_Process_IgnoresIncomingChunks(t *testing.T) {
	stale := []domain.Chunk{{ID: "old", Content: "stale"}}

	chunks, err := New().Process(context.Background(), policyDoc("Incident response plan."), stale)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.NotEqual(t, "old", chunks[0].ID)
	assert.Equal(t, "Incident response plan.", chunks[0].Content)
}

func TestProcessor_Process_MultiByteContent(t *testing.T) {
	doc := policyDoc(strings.Repeat("é", 150))

	chunks, err := New(WithChunkSize(100), WithOverlap(10)).Process(context.Background(), doc, nil)

	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c.Content))
		assert.LessOrEqual(t, utf8.RuneCountInString(c.Content), 100)
	}
	assert.Equal(t, 60, utf8.RuneCountInString(chunks[1].Content))
}

func TestProcessor_Process_KeepsWordsWhole(t *testing.T) {
	doc := policyDoc(strings.Repeat("cat dog ", 10))

	chunks, err := New(WithChunkSize(20), WithOverlap(0)).Process(context.Background(), doc, nil)

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		for _, word := range strings.Fields(c.Content) {
			assert.Contains(t, []string{"cat", "dog"}, word, "chunk %d cut a word: %q", c.Position, c.Content)
		}
	}
}
