// Package filesystem stores uploaded source files under a local directory.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/domain"
	"github.com/Lovable-LDCS/maturion-genesis-forge-91-sub006/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ObjectStore = (*Store)(nil)

// Store maps object paths onto files below root.
type Store struct {
	root string
}

// NewStore creates a store rooted at root, creating the directory if needed.
// If root is empty, defaults to ~/.forge/objects.
func NewStore(root string) (*Store, error) {
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		root = filepath.Join(home, ".forge", "objects")
	}
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("creating object root: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the directory holding the objects.
func (s *Store) Root() string {
	return s.root
}

// resolve turns an object path into a file path below root.
// Paths escaping the root are rejected.
func (s *Store) resolve(p string) (string, error) {
	clean := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("object path %q: %w", p, domain.ErrInvalidInput)
	}
	for _, part := range strings.Split(p, "/") {
		if part == ".." {
			return "", fmt.Errorf("object path %q: %w", p, domain.ErrInvalidInput)
		}
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Put writes an object through a temp file and rename so readers never see
// a partial write.
func (s *Store) Put(_ context.Context, p string, data []byte, _ string) error {
	target, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return fmt.Errorf("creating object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".put-*")
	if err != nil {
		return fmt.Errorf("creating temp object: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing object: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming object: %w", err)
	}
	return nil
}

// Get reads an object.
func (s *Store) Get(_ context.Context, p string) ([]byte, error) {
	target, err := s.resolve(p)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("object %s: %w", p, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", p, err)
	}
	return data, nil
}

// Exists reports whether an object is present.
func (s *Store) Exists(_ context.Context, p string) (bool, error) {
	target, err := s.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(target)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat object %s: %w", p, err)
	}
	return !info.IsDir(), nil
}

// Copy duplicates src to dst.
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	data, err := s.Get(ctx, src)
	if err != nil {
		return err
	}
	return s.Put(ctx, dst, data, "")
}

// Delete removes an object. Missing objects are ignored.
func (s *Store) Delete(_ context.Context, p string) error {
	target, err := s.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("deleting object %s: %w", p, err)
	}
	return nil
}
