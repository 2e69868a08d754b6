package testsupport

import (
	"context"
	"path/filepath"
	"testing"

	"scenepack/internal/config"
	"scenepack/internal/registry"
	"scenepack/internal/store/localblob"
	"scenepack/internal/store/sqlite"
)

// MustOpenStore opens a sqlite.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *sqlite.Store {
	t.Helper()

	store, err := sqlite.Open(cfg)
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewBlobs opens a localblob store rooted in the config workspace.
func NewBlobs(t testing.TB, cfg *config.Config) *localblob.Store {
	t.Helper()

	blobs, err := localblob.New(filepath.Join(cfg.Paths.WorkspaceDir, "files"))
	if err != nil {
		t.Fatalf("localblob.New: %v", err)
	}
	return blobs
}

// NewInstance assembles a registered packer instance backed by temp
// sqlite and blob stores, returning the registry alongside it.
func NewInstance(t testing.TB, cfg *config.Config) (*registry.Registry, *registry.Instance) {
	t.Helper()

	docs := MustOpenStore(t, cfg)
	blobs := NewBlobs(t, cfg)
	instance, err := registry.NewInstance(cfg, docs, docs, blobs, nil)
	if err != nil {
		t.Fatalf("registry.NewInstance: %v", err)
	}
	reg := registry.New()
	if err := reg.Register(instance); err != nil {
		t.Fatalf("registry.Register: %v", err)
	}
	return reg, instance
}

// SeedBlob uploads fixture bytes into an instance's blob store.
func SeedBlob(t testing.TB, instance *registry.Instance, path string, data []byte) {
	t.Helper()

	if err := instance.Blobs.Upload(context.Background(), path, data); err != nil {
		t.Fatalf("seed blob %s: %v", path, err)
	}
}
