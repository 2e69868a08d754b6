// Package archive reads and writes exported package archives. An
// archive is a tree of named byte blobs, in practice a directory on
// disk, with a fixed layout of JSON indexes plus bundled asset files.
package archive

import (
	"encoding/json"
	"sort"
	"strings"

	"scenepack/internal/assets"
	"scenepack/internal/document"
	"scenepack/internal/relations"
	"scenepack/internal/services"
)

// Writer stores blobs at archive-relative paths.
type Writer interface {
	Put(path string, data []byte) error
	Close() error
}

// Reader retrieves blobs from an existing archive.
type Reader interface {
	Get(path string) ([]byte, error)
	Exists(path string) (bool, error)
	// List returns archive-relative paths under prefix, recursively.
	List(prefix string) ([]string, error)
	Close() error
}

// Archive wraps a Reader with manifest discovery and typed accessors
// for the layout's JSON indexes.
type Archive struct {
	reader   Reader
	Manifest *Manifest
	Slug     string
}

// Open validates the marker file, locates the manifest at the archive
// root and decodes it.
func Open(reader Reader) (*Archive, error) {
	ok, err := reader.Exists(MarkerFile)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "open", "probe marker file", err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrValidation, "archive", "open", "not a package archive: missing "+MarkerFile, nil)
	}
	paths, err := reader.List("")
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "open", "list archive root", err)
	}
	sort.Strings(paths)
	var manifestPath string
	for _, p := range paths {
		if strings.Contains(p, "/") || !strings.HasSuffix(p, ".json") {
			continue
		}
		manifestPath = p
		break
	}
	if manifestPath == "" {
		return nil, services.Wrap(services.ErrValidation, "archive", "open", "no manifest found at archive root", nil)
	}
	raw, err := reader.Get(manifestPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "open", "read manifest", err)
	}
	manifest, err := parseManifest(raw)
	if err != nil {
		return nil, err
	}
	return &Archive{
		reader:   reader,
		Manifest: manifest,
		Slug:     strings.TrimSuffix(manifestPath, ".json"),
	}, nil
}

// Documents decodes the per-kind document array. A missing index file
// yields an empty slice, not an error.
func (a *Archive) Documents(kind document.Kind) ([]*document.Document, error) {
	raw, ok, err := a.optional(DocumentsPath(kind))
	if err != nil || !ok {
		return nil, err
	}
	var entries []map[string]any
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "read_documents", "decode "+string(kind)+" index", err)
	}
	docs := make([]*document.Document, 0, len(entries))
	for _, data := range entries {
		docs = append(docs, document.New(kind, data))
	}
	return docs, nil
}

// Folders decodes folders.json, normalizing legacy parent fields.
func (a *Archive) Folders() ([]*document.Folder, error) {
	raw, ok, err := a.optional(FoldersFile)
	if err != nil || !ok {
		return nil, err
	}
	folders, err := document.FoldersFromJSON(raw)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "read_folders", "decode folder index", err)
	}
	return folders, nil
}

// Catalog decodes assets.json.
func (a *Archive) Catalog() (*assets.Catalog, error) {
	catalog := assets.NewCatalog()
	raw, ok, err := a.optional(AssetsIndexFile)
	if err != nil || !ok {
		return catalog, err
	}
	if err := json.Unmarshal(raw, catalog); err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "read_assets", "decode asset index", err)
	}
	return catalog, nil
}

// RelatedData decodes related-data.json.
func (a *Archive) RelatedData() (*relations.RelatedData, error) {
	related := relations.NewRelatedData()
	raw, ok, err := a.optional(RelatedDataFile)
	if err != nil || !ok {
		return related, err
	}
	if err := json.Unmarshal(raw, related); err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "read_related", "decode relation index", err)
	}
	return related, nil
}

// UnrelatedData decodes unrelated-data.json.
func (a *Archive) UnrelatedData() (*relations.UnrelatedData, error) {
	unrelated := relations.NewUnrelatedData()
	raw, ok, err := a.optional(UnrelatedDataFile)
	if err != nil || !ok {
		return unrelated, err
	}
	if err := json.Unmarshal(raw, unrelated); err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "read_unrelated", "decode unrelated index", err)
	}
	return unrelated, nil
}

// Asset returns a bundled asset's bytes by storage path.
func (a *Archive) Asset(storagePath string) ([]byte, error) {
	raw, err := a.reader.Get(AssetPath(storagePath))
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "archive", "read_asset", "asset "+storagePath, err)
	}
	return raw, nil
}

// HasAsset reports whether a storage path is bundled in the archive.
func (a *Archive) HasAsset(storagePath string) (bool, error) {
	return a.reader.Exists(AssetPath(storagePath))
}

// Close releases the underlying reader.
func (a *Archive) Close() error {
	return a.reader.Close()
}

func (a *Archive) optional(path string) ([]byte, bool, error) {
	ok, err := a.reader.Exists(path)
	if err != nil {
		return nil, false, services.Wrap(services.ErrValidation, "archive", "read", "probe "+path, err)
	}
	if !ok {
		return nil, false, nil
	}
	raw, err := a.reader.Get(path)
	if err != nil {
		return nil, false, services.Wrap(services.ErrValidation, "archive", "read", "read "+path, err)
	}
	return raw, true, nil
}
