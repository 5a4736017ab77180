package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrUnauthorized", ErrUnauthorized},
		{"ErrInvalidTransition", ErrInvalidTransition},
		{"ErrExtraction", ErrExtraction},
		{"ErrStorage", ErrStorage},
		{"ErrNoEmbeddedChunks", ErrNoEmbeddedChunks},
		{"ErrTenantMismatch", ErrTenantMismatch},
		{"ErrDimensionMismatch", ErrDimensionMismatch},
		{"ErrRequeueLimit", ErrRequeueLimit},
		{"ErrJobTerminal", ErrJobTerminal},
		{"ErrEmbeddingUnavailable", ErrEmbeddingUnavailable},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrCrawlerUnavailable", ErrCrawlerUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("reading tenant/t1/uploads/a.pdf: %w", ErrStorage)
	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.False(t, errors.Is(wrapped, ErrExtraction))
}
