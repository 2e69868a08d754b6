// Package importer reconstitutes an exported archive inside a
// destination host: it creates the missing documents, materializes
// their assets locally, rebuilds folder ancestry and runs the
// reference resolver over every created batch.
package importer

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"scenepack/internal/archive"
	"scenepack/internal/assets"
	"scenepack/internal/document"
	"scenepack/internal/logging"
	"scenepack/internal/registry"
	"scenepack/internal/resolver"
	"scenepack/internal/services"
	"scenepack/internal/slug"
)

// Options scope a single import run.
type Options struct {
	// Anchor restricts the import to one document (by UUID, e.g.
	// "Scene.abc123") plus everything in its related-data closure.
	// Empty imports the whole archive.
	Anchor string
}

// Importer orchestrates one packer instance's import pipeline.
type Importer struct {
	instance *registry.Instance
	resolver *resolver.Resolver
	logger   *slog.Logger
}

// New builds an importer for the named package registered in reg.
func New(reg *registry.Registry, packageName string) (*Importer, error) {
	instance, err := reg.Get(packageName)
	if err != nil {
		return nil, err
	}
	res, err := resolver.New(reg, packageName)
	if err != nil {
		return nil, err
	}
	return &Importer{
		instance: instance,
		resolver: res,
		logger:   instance.Logger.With(slog.String(logging.FieldComponent, "importer")),
	}, nil
}

// Import unpacks the archive into the destination stores. Documents
// already present by identity are skipped, so re-importing the same
// archive is a no-op for everything created earlier.
func (i *Importer) Import(ctx context.Context, pack *archive.Archive, opts Options) (*Report, error) {
	if err := pack.Manifest.CheckMinimumVersion(archive.FormatVersion); err != nil {
		return nil, err
	}
	cfg := i.instance.Config
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "importer", "import", "ensure directories", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.WorkspaceDir, "import.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "importer", "import", "acquire import lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "importer", "import", "another import is in progress", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	catalog, err := pack.Catalog()
	if err != nil {
		return nil, err
	}
	related, err := pack.RelatedData()
	if err != nil {
		return nil, err
	}
	archiveFolders, err := pack.Folders()
	if err != nil {
		return nil, err
	}

	var allowed map[string]bool
	if opts.Anchor != "" {
		allowed = map[string]bool{opts.Anchor: true}
		for _, target := range related.TargetUUIDs(opts.Anchor) {
			allowed[target] = true
		}
	}

	report := &Report{
		PackageName:    pack.Manifest.Name,
		WelcomeJournal: pack.Manifest.WelcomeJournal,
		Created:        make(map[document.Kind]int),
		Skipped:        make(map[document.Kind]int),
	}
	folderRemap := newFolderRemap(i.instance, archiveFolders)
	mat := &materializer{
		blobs:         i.instance.Blobs,
		rules:         assets.RulesFromConfig(cfg),
		packageFolder: slug.PackageFolder(pack.Manifest.Author, pack.Manifest.Name),
		logger:        i.logger,
	}
	seen := make(map[string]bool)

	ctx = services.WithPackage(ctx, pack.Manifest.Name)
	for _, kind := range document.ProcessingOrder() {
		docs, err := pack.Documents(kind)
		if err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			continue
		}
		kindCtx := services.WithKind(ctx, string(kind))

		pending := make([]*document.Document, 0, len(docs))
		for _, doc := range docs {
			if allowed != nil && !allowed[doc.UUID()] && !allowed[doc.SourceUUID()] {
				continue
			}
			existing, err := i.instance.Documents.GetByID(kindCtx, kind, doc.ID())
			if err != nil {
				return nil, err
			}
			if existing != nil {
				report.Skipped[kind]++
				continue
			}
			pending = append(pending, doc)
		}
		if len(pending) == 0 {
			continue
		}

		// Assets land before document creation so created documents
		// never transiently point at unreachable files.
		materialized, warnings := mat.ensure(kindCtx, pending, catalog, pack, seen)
		report.AssetWarnings = append(report.AssetWarnings, warnings...)

		for _, doc := range materialized {
			if oldFolder := doc.FolderID(); oldFolder != "" {
				newID, err := folderRemap.ensure(kindCtx, oldFolder)
				if err != nil {
					i.logger.Warn("folder ancestry incomplete",
						slog.String(logging.FieldDocument, doc.UUID()),
						slog.String("error", err.Error()))
					doc.SetFolderID("")
					continue
				}
				doc.SetFolderID(newID)
			}
		}

		created, err := i.instance.Documents.CreateMany(kindCtx, kind, materialized)
		if err != nil {
			return nil, err
		}
		report.Created[kind] = len(created)
		logging.WithContext(kindCtx, i.logger).Info("documents created",
			slog.Int("count", len(created)),
			slog.Int("skipped", report.Skipped[kind]))

		available, err := i.availableDocuments(ctx)
		if err != nil {
			return nil, err
		}
		updates := i.resolver.Resolve(kind, created, available)
		if len(updates) > 0 {
			if err := i.instance.Documents.UpdateMany(kindCtx, kind, updates); err != nil {
				return nil, err
			}
			report.Resolved += len(updates)
		}
	}

	report.Assets = len(seen)
	report.Folders = folderRemap.created
	i.logger.Info("import complete",
		slog.Int("created", report.TotalCreated()),
		slog.Int("skipped", report.TotalSkipped()),
		slog.Int("assets", report.Assets),
		slog.Int("asset_warnings", len(report.AssetWarnings)))
	return report, nil
}

// availableDocuments returns the destination's full live document set,
// which by construction includes every batch created so far.
func (i *Importer) availableDocuments(ctx context.Context) ([]*document.Document, error) {
	var all []*document.Document
	for _, kind := range document.ProcessingOrder() {
		docs, err := i.instance.Documents.Query(ctx, kind, nil)
		if err != nil {
			return nil, err
		}
		all = append(all, docs...)
	}
	return all, nil
}

// folderRemap lazily recreates archive folder ancestry in the
// destination, parent before child, reusing destination folders that
// already match by name, kind and parent.
type folderRemap struct {
	instance *registry.Instance
	byOldID  map[string]*document.Folder
	remap    map[string]string
	created  int
}

func newFolderRemap(instance *registry.Instance, archiveFolders []*document.Folder) *folderRemap {
	byOldID := make(map[string]*document.Folder, len(archiveFolders))
	for _, folder := range archiveFolders {
		byOldID[folder.ID] = folder
	}
	return &folderRemap{
		instance: instance,
		byOldID:  byOldID,
		remap:    make(map[string]string),
	}
}

func (f *folderRemap) ensure(ctx context.Context, oldID string) (string, error) {
	if newID, ok := f.remap[oldID]; ok {
		return newID, nil
	}
	folder, ok := f.byOldID[oldID]
	if !ok {
		return "", services.Wrap(services.ErrNotFound, "importer", "folders", "archive folder "+oldID, nil)
	}

	parentNewID := ""
	if folder.Parent != "" && folder.Parent != oldID {
		var err error
		parentNewID, err = f.ensure(ctx, folder.Parent)
		if err != nil {
			return "", err
		}
	}

	existing, err := f.instance.Folders.List(ctx, folder.Kind)
	if err != nil {
		return "", err
	}
	for _, candidate := range existing {
		if candidate.Name == folder.Name && candidate.Parent == parentNewID {
			f.remap[oldID] = candidate.ID
			return candidate.ID, nil
		}
	}

	created, err := f.instance.Folders.Create(ctx, folder.Name, folder.Kind, parentNewID)
	if err != nil {
		return "", err
	}
	f.created++
	f.remap[oldID] = created.ID
	return created.ID, nil
}
