// Package localblob stores asset files under a directory keyed by
// storage path.
package localblob

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"scenepack/internal/services"
)

// Store implements store.BlobStore on a local directory.
type Store struct {
	root string
}

// New opens a blob store rooted at dir, creating it if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "blobstore", "open", "create blob directory", err)
	}
	return &Store{root: dir}, nil
}

// Root returns the backing directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	target, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(target)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, services.Wrap(nil, "blobstore", "probe", "stat "+path, err)
}

func (s *Store) Upload(ctx context.Context, path string, data []byte) error {
	target, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return services.Wrap(nil, "blobstore", "upload", "create parent directory for "+path, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return services.Wrap(nil, "blobstore", "upload", "write "+path, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "blobstore", "get", path, err)
		}
		return nil, services.Wrap(nil, "blobstore", "get", "read "+path, err)
	}
	return raw, nil
}

// List returns stored paths under dir, recursively, relative to the
// store root with forward slashes. A missing directory lists empty.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	base := s.root
	if dir != "" {
		resolved, err := s.resolve(dir)
		if err != nil {
			return nil, err
		}
		base = resolved
	}
	var paths []string
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, services.Wrap(nil, "blobstore", "list", "walk "+dir, err)
	}
	return paths, nil
}

func (s *Store) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." {
		return s.root, nil
	}
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", services.Wrap(services.ErrValidation, "blobstore", "resolve", "path escapes blob root: "+path, nil)
	}
	return filepath.Join(s.root, clean), nil
}
