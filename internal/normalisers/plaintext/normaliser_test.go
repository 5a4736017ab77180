package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, 5, n.Priority())
	assert.Contains(t, n.SupportedMIMETypes(), "text/plain")
	assert.NotContains(t, n.SupportedMIMETypes(), "text/html")
	var _ driven.Normaliser = n
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		FileName: "risk_register-2024.txt",
		MIMEType: "text/plain",
		Content:  []byte("\ufeffLine one\r\nLine two\r\n"),
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "risk register 2024", result.Title)
	assert.Equal(t, "Line one\nLine two", result.Content)
}

func TestNormalise_TitleFromMetadata(t *testing.T) {
	raw := &domain.RawDocument{
		FileName: "upload.txt",
		Content:  []byte("body"),
		Metadata: map[string]any{"title": "Org Profile"},
	}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Org Profile", result.Title)
}

func TestNormalise_InvalidUTF8Dropped(t *testing.T) {
	raw := &domain.RawDocument{FileName: "a.txt", Content: []byte("ok\xff\xfe text")}

	result, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "ok text", result.Content)
}

func TestNormalise_Rejects(t *testing.T) {
	n := New()
	ctx := context.Background()

	_, err := n.Normalise(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = n.Normalise(ctx, &domain.RawDocument{FileName: "a.bin", Content: []byte("PK\x00\x01")})
	assert.ErrorIs(t, err, domain.ErrExtraction)

	_, err = n.Normalise(ctx, &domain.RawDocument{FileName: "empty.txt", Content: []byte("  \n\t")})
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
