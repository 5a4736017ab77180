package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

func TestObjectStore_PutGetCopyDelete(t *testing.T) {
	store := NewObjectStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/org-1/policy.md", []byte("# Policy"), "text/markdown"))

	ok, err := store.Exists(ctx, "org-1/policy.md")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Copy(ctx, "org-1/policy.md", "tenant/org-1/uploads/policy.md"))
	data, err := store.Get(ctx, "tenant/org-1/uploads/policy.md")
	require.NoError(t, err)
	assert.Equal(t, "# Policy", string(data))

	require.NoError(t, store.Delete(ctx, "org-1/policy.md"))
	require.NoError(t, store.Delete(ctx, "org-1/policy.md"))
	assert.Equal(t, []string{"tenant/org-1/uploads/policy.md"}, store.Paths())

	_, err = store.Get(ctx, "org-1/policy.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Copy(ctx, "missing", "dst"), domain.ErrNotFound)
	assert.ErrorIs(t, store.Put(ctx, "", nil, ""), domain.ErrInvalidInput)
}
