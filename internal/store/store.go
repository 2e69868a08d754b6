// Package store defines the destination-side collaborator interfaces
// the engine works against: a document store, a folder store and a
// blob store. Hosts supply implementations; the sqlite and localblob
// subpackages provide the standalone ones.
package store

import (
	"context"

	"scenepack/internal/document"
)

// DocumentStore persists documents by kind and identifier.
type DocumentStore interface {
	// GetByID returns the stored document or nil when absent.
	GetByID(ctx context.Context, kind document.Kind, id string) (*document.Document, error)

	// CreateMany inserts documents preserving their supplied IDs, and
	// returns the created documents in input order.
	CreateMany(ctx context.Context, kind document.Kind, docs []*document.Document) ([]*document.Document, error)

	// UpdateMany replaces the stored data for each document by ID.
	UpdateMany(ctx context.Context, kind document.Kind, docs []*document.Document) error

	// Query returns documents of a kind matching the predicate. A nil
	// predicate matches everything.
	Query(ctx context.Context, kind document.Kind, match func(*document.Document) bool) ([]*document.Document, error)
}

// FolderStore persists the folder tree alongside documents.
type FolderStore interface {
	// Create inserts a folder and returns it with its ID assigned.
	Create(ctx context.Context, name string, kind document.Kind, parentID string) (*document.Folder, error)

	// List returns all folders of a kind.
	List(ctx context.Context, kind document.Kind) ([]*document.Folder, error)
}

// BlobStore holds asset files addressed by storage path. Its List
// method doubles as the lister the asset locator expands wildcard
// references against.
type BlobStore interface {
	Exists(ctx context.Context, path string) (bool, error)
	Upload(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, dir string) ([]string, error)
}
