// Package registry tracks active packer instances keyed by package
// name. The registry is an explicit object handed to the exporter,
// importer and resolver rather than ambient module state, so tests and
// embedding hosts can run isolated instances side by side.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	"scenepack/internal/config"
	"scenepack/internal/logging"
	"scenepack/internal/services"
	"scenepack/internal/store"
)

// Instance binds one package's configuration to the stores and logger
// it operates against.
type Instance struct {
	PackageName string
	Config      *config.Config
	Documents   store.DocumentStore
	Folders     store.FolderStore
	Blobs       store.BlobStore
	Logger      *slog.Logger
}

// NewInstance assembles an instance. A nil logger gets a no-op one.
func NewInstance(cfg *config.Config, documents store.DocumentStore, folders store.FolderStore, blobs store.BlobStore, logger *slog.Logger) (*Instance, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "new_instance", "config is required", nil)
	}
	if cfg.Package.Name == "" {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "new_instance", "package name is required", nil)
	}
	if documents == nil || folders == nil || blobs == nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "new_instance", "document, folder and blob stores are required", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Instance{
		PackageName: cfg.Package.Name,
		Config:      cfg,
		Documents:   documents,
		Folders:     folders,
		Blobs:       blobs,
		Logger:      logger.With(slog.String(logging.FieldPackage, cfg.Package.Name)),
	}, nil
}

// Registry holds instances keyed by package name.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*Instance
}

func New() *Registry {
	return &Registry{instances: make(map[string]*Instance)}
}

// Register adds an instance; registering the same package name twice
// is a configuration error.
func (r *Registry) Register(instance *Instance) error {
	if instance == nil {
		return services.Wrap(services.ErrConfiguration, "registry", "register", "instance is nil", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.instances[instance.PackageName]; exists {
		return services.Wrap(services.ErrConfiguration, "registry", "register",
			"package already registered: "+instance.PackageName, nil)
	}
	r.instances[instance.PackageName] = instance
	return nil
}

// Get returns the instance for a package name.
func (r *Registry) Get(packageName string) (*Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	instance, ok := r.instances[packageName]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "get",
			"no packer instance for package: "+packageName, nil)
	}
	return instance, nil
}

// Deregister removes an instance, reporting whether it was present.
func (r *Registry) Deregister(packageName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.instances[packageName]
	delete(r.instances, packageName)
	return ok
}

// Names returns the registered package names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
