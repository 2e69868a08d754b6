package archive

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"scenepack/internal/services"
)

// DirWriter writes an archive as a plain directory tree.
type DirWriter struct {
	root string
}

// NewDirWriter creates the archive root directory and drops the marker
// file immediately so a partially written tree is still recognizable.
func NewDirWriter(root string) (*DirWriter, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "create", "create archive directory", err)
	}
	w := &DirWriter{root: root}
	if err := w.Put(MarkerFile, nil); err != nil {
		return nil, err
	}
	return w, nil
}

// Root returns the directory the archive is written into.
func (w *DirWriter) Root() string {
	return w.root
}

func (w *DirWriter) Put(path string, data []byte) error {
	target, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "archive", "write", "create parent directory for "+path, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return services.Wrap(services.ErrConfiguration, "archive", "write", "write "+path, err)
	}
	return nil
}

func (w *DirWriter) Close() error {
	return nil
}

func (w *DirWriter) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", services.Wrap(services.ErrValidation, "archive", "resolve", "path escapes archive root: "+path, nil)
	}
	return filepath.Join(w.root, clean), nil
}

// DirReader reads an archive laid out as a directory tree.
type DirReader struct {
	root string
}

// NewDirReader opens an existing archive directory.
func NewDirReader(root string) (*DirReader, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "archive", "open", "archive directory "+root, err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "archive", "open", root+" is not a directory", nil)
	}
	return &DirReader{root: root}, nil
}

func (r *DirReader) Get(path string) ([]byte, error) {
	target, err := r.resolve(path)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "archive", "read", path, err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "archive", "read", "read "+path, err)
	}
	return raw, nil
}

func (r *DirReader) Exists(path string) (bool, error) {
	target, err := r.resolve(path)
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
	return false, services.Wrap(services.ErrConfiguration, "archive", "probe", "stat "+path, err)
}

func (r *DirReader) List(prefix string) ([]string, error) {
	base := r.root
	if prefix != "" {
		resolved, err := r.resolve(prefix)
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
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "list", "walk "+prefix, err)
	}
	return paths, nil
}

func (r *DirReader) Close() error {
	return nil
}

func (r *DirReader) resolve(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == "." {
		return r.root, nil
	}
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", services.Wrap(services.ErrValidation, "archive", "resolve", "path escapes archive root: "+path, nil)
	}
	return filepath.Join(r.root, clean), nil
}
