// Package gcs stores uploaded source files in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Config holds GCS connection settings.
type Config struct {
	// Bucket is the bucket name (required).
	Bucket string

	// CredentialsFile is a service account key. Empty uses application default credentials.
	CredentialsFile string

	// Endpoint overrides the API endpoint, e.g. for an emulator.
	Endpoint string
}

// Store is a driven.ObjectStore backed by one GCS bucket.
type Store struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// NewStore opens a client for cfg.Bucket.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs: bucket is required: %w", domain.ErrInvalidInput)
	}
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: creating client: %w", err)
	}
	return &Store{client: client, bucket: client.Bucket(cfg.Bucket)}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

// Put writes an object, replacing any existing one.
func (s *Store) Put(ctx context.Context, path string, data []byte, contentType string) error {
	name, err := objectName(path)
	if err != nil {
		return err
	}
	w := s.bucket.Object(name).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: writing %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: finalizing %s: %w", name, err)
	}
	return nil
}

// Get reads an object.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	name, err := objectName(path)
	if err != nil {
		return nil, err
	}
	r, err := s.bucket.Object(name).NewReader(ctx)
	if err != nil {
		return nil, mapError(name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: reading %s: %w", name, err)
	}
	return data, nil
}

// Exists reports whether an object is present.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	name, err := objectName(path)
	if err != nil {
		return false, err
	}
	_, err = s.bucket.Object(name).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, mapError(name, err)
	}
	return true, nil
}

// Copy duplicates src to dst server-side. The copy only succeeds when dst is
// absent; an existing dst is left as it is and reported as success, so a
// repeated repair is idempotent.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	srcName, err := objectName(src)
	if err != nil {
		return err
	}
	dstName, err := objectName(dst)
	if err != nil {
		return err
	}
	dstObj := s.bucket.Object(dstName).If(storage.Conditions{DoesNotExist: true})
	if _, err := dstObj.CopierFrom(s.bucket.Object(srcName)).Run(ctx); err != nil {
		if isPreconditionFailed(err) {
			return nil
		}
		return mapError(srcName, err)
	}
	return nil
}

// Delete removes an object. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, path string) error {
	name, err := objectName(path)
	if err != nil {
		return err
	}
	if err := s.bucket.Object(name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return mapError(name, err)
	}
	return nil
}

// objectName strips a leading slash and rejects empty names.
func objectName(path string) (string, error) {
	name := strings.TrimLeft(path, "/")
	if name == "" {
		return "", fmt.Errorf("gcs: object path %q: %w", path, domain.ErrInvalidInput)
	}
	return name, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// mapError translates not-found responses to domain.ErrNotFound.
func mapError(name string, err error) error {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("gcs: %s: %w", name, domain.ErrNotFound)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("gcs: %s: %w", name, domain.ErrNotFound)
	}
	return fmt.Errorf("gcs: %s: %w", name, err)
}
