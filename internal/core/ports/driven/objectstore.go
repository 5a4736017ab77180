package driven

import "context"

// ObjectStore holds uploaded source files by path.
// Paths use forward slashes and no leading slash.
type ObjectStore interface {
	// Put writes an object, replacing any existing one.
	Put(ctx context.Context, path string, data []byte, contentType string) error

	// Get reads an object. Missing objects return domain.ErrNotFound.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether an object is present.
	Exists(ctx context.Context, path string) (bool, error)

	// Copy duplicates src to dst.
	Copy(ctx context.Context, src, dst string) error

	// Delete removes an object. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
