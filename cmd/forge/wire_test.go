package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/adapters/driven/config/file"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
)

func TestWire_DefaultSettings(t *testing.T) {
	home := t.TempDir()

	app, err := wire(context.Background(), home)
	require.NoError(t, err)
	defer app.Close()

	s := app.Services
	assert.NotNil(t, s.Documents)
	assert.NotNil(t, s.Processor)
	assert.NotNil(t, s.Retrieval)
	assert.NotNil(t, s.Crawl)
	assert.NotNil(t, s.Dedup)
	assert.NotNil(t, s.Recovery)
	assert.NotNil(t, s.Embeddings)
	assert.NotNil(t, s.Requeue)
	assert.NotNil(t, s.Dispatcher)
	assert.NotNil(t, s.Scheduler)
	assert.NotNil(t, s.Settings)

	docs, err := s.Documents.List(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestWire_UnsupportedStorageBackend(t *testing.T) {
	home := t.TempDir()
	store, err := file.NewConfigStore(home)
	require.NoError(t, err)
	require.NoError(t, store.Set("storage.backend", "s3"))

	_, err = wire(context.Background(), home)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestWire_FailureAfterStoreOpenReturnsError(t *testing.T) {
	home := t.TempDir()
	store, err := file.NewConfigStore(home)
	require.NoError(t, err)
	require.NoError(t, store.Set("storage.root", "/dev/null/objects"))

	var app *application
	require.NotPanics(t, func() {
		app, err = wire(context.Background(), home)
	})

	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "opening object store")
}

func TestApplication_Close(t *testing.T) {
	var order []string
	app := &application{closers: []func() error{
		func() error { order = append(order, "store"); return nil },
		func() error { order = append(order, "objects"); return errors.New("already closed") },
		func() error { order = append(order, "embedder"); return nil },
	}}

	app.Close()

	assert.Equal(t, []string{"embedder", "objects", "store"}, order)

	var nilApp *application
	assert.NotPanics(t, nilApp.Close)
}

func TestOpenObjectStore_GCSRequiresBucket(t *testing.T) {
	_, err := openObjectStore(context.Background(), domain.StorageSettings{Backend: domain.ObjectStoreGCS}, t.TempDir())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.bucket")
}
