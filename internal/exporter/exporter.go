// Package exporter walks a selected document set, stamps and
// serializes it into an archive together with the asset catalog, the
// relation graph and every unique referenced asset.
package exporter

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"scenepack/internal/archive"
	"scenepack/internal/assets"
	"scenepack/internal/document"
	"scenepack/internal/fetch"
	"scenepack/internal/logging"
	"scenepack/internal/registry"
	"scenepack/internal/relations"
	"scenepack/internal/services"
	"scenepack/internal/slug"
)

// Selection is the set of documents chosen for export, grouped by kind.
type Selection map[document.Kind][]*document.Document

// Options tune a single export run.
type Options struct {
	// WelcomeJournal is the ID of the journal entry surfaced to the
	// user after first import. Optional.
	WelcomeJournal string
}

// Exporter orchestrates one packer instance's export pipeline.
type Exporter struct {
	instance  *registry.Instance
	rules     assets.Rules
	locator   *assets.Locator
	extractor *relations.Extractor
	fetcher   *fetch.Fetcher
	logger    *slog.Logger
}

// New builds an exporter for the named package registered in reg.
func New(reg *registry.Registry, packageName string) (*Exporter, error) {
	instance, err := reg.Get(packageName)
	if err != nil {
		return nil, err
	}
	rules := assets.RulesFromConfig(instance.Config)
	logger := instance.Logger.With(slog.String(logging.FieldComponent, "exporter"))
	return &Exporter{
		instance:  instance,
		rules:     rules,
		locator:   assets.NewLocator(rules, instance.Blobs, instance.Logger),
		extractor: relations.NewExtractor(instance.Logger),
		fetcher:   fetch.New(time.Duration(instance.Config.Download.TimeoutSeconds) * time.Second),
		logger:    logger,
	}, nil
}

// Export serializes the selection into writer. Serialization failures
// abort the run; individual asset download failures are recorded as
// warnings and the archive is still produced.
func (e *Exporter) Export(ctx context.Context, selection Selection, writer archive.Writer, opts Options) (*Report, error) {
	cfg := e.instance.Config
	report := &Report{
		PackageName: cfg.Package.Name,
		Created:     make(map[document.Kind]int),
	}
	catalog := assets.NewCatalog()
	related := relations.NewRelatedData()
	unrelated := relations.NewUnrelatedData()
	addOpts := assets.AddOptions{
		AllowCore:   cfg.Packs.AllowCoreAssets,
		AllowSystem: cfg.Packs.AllowSystemAssets,
	}

	ctx = services.WithPackage(ctx, cfg.Package.Name)
	for _, kind := range document.ProcessingOrder() {
		docs := selection[kind]
		if len(docs) == 0 {
			continue
		}
		kindCtx := services.WithKind(ctx, string(kind))
		stamped := make([]map[string]any, 0, len(docs))
		for _, doc := range docs {
			clone := doc.Clone()
			hash, err := document.ContentHash(clone)
			if err != nil {
				return nil, services.Wrap(services.ErrValidation, "exporter", "stamp",
					"hash "+clone.UUID(), err)
			}
			clone.StampExport(cfg.Package.Name, cfg.Package.Version, hash)
			stamped = append(stamped, clone.Data)

			for _, ref := range e.locator.Locate(kindCtx, doc) {
				catalog.Add(ref, addOpts)
			}
			rels := e.extractor.Extract(doc)
			if len(rels) > 0 {
				related.AddRelations(doc.UUID(), rels)
			}
			if kind != document.KindScene {
				unrelated.Add(kind, relations.Summary{UUID: doc.UUID(), Name: doc.Name()})
			}
		}
		raw, err := json.MarshalIndent(stamped, "", "  ")
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "exporter", "serialize",
				"encode "+string(kind)+" documents", err)
		}
		if err := writer.Put(archive.DocumentsPath(kind), raw); err != nil {
			return nil, err
		}
		report.Created[kind] = len(docs)
		logging.WithContext(kindCtx, e.logger).Info("documents serialized",
			slog.Int("count", len(docs)))
	}

	// Subtract scene targets after every kind is accumulated, so the
	// unrelated set never depends on which kind serialized first.
	for _, scene := range selection[document.KindScene] {
		for _, target := range related.TargetUUIDs(scene.UUID()) {
			unrelated.Remove(target)
		}
	}

	folderCount, err := e.writeFolders(ctx, selection, writer)
	if err != nil {
		return nil, err
	}
	report.Folders = folderCount

	report.Assets, report.AssetWarnings = e.bundleAssets(ctx, catalog, writer)

	if err := e.writeIndexes(catalog, related, unrelated, writer); err != nil {
		return nil, err
	}
	if err := e.writeSummaries(selection, catalog, writer); err != nil {
		return nil, err
	}

	manifest := e.manifest(selection, opts)
	raw, err := manifest.MarshalIndent()
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "exporter", "manifest", "encode manifest", err)
	}
	if err := writer.Put(archive.ManifestPath(slug.Make(cfg.Package.Name)), raw); err != nil {
		return nil, err
	}
	report.Manifest = manifest

	e.logger.Info("export complete",
		slog.Int("documents", totalSelected(selection)),
		slog.Int("assets", report.Assets),
		slog.Int("asset_warnings", len(report.AssetWarnings)))
	return report, nil
}

func (e *Exporter) manifest(selection Selection, opts Options) *archive.Manifest {
	cfg := e.instance.Config
	counts := make(map[document.Kind]int, len(selection))
	for kind, docs := range selection {
		if len(docs) > 0 {
			counts[kind] = len(docs)
		}
	}
	return &archive.Manifest{
		Name:           cfg.Package.Name,
		Title:          cfg.Package.Title,
		Author:         cfg.Package.Author,
		Version:        cfg.Package.Version,
		Description:    cfg.Package.Description,
		FormatVersion:  archive.FormatVersion,
		WelcomeJournal: opts.WelcomeJournal,
		CreatedAt:      time.Now().UTC(),
		Tags:           cfg.Package.Tags,
		Themes:         cfg.Package.Themes,
		Players:        cfg.Package.Players,
		Levels:         cfg.Package.Levels,
		Counts:         counts,
	}
}

// writeFolders walks folder ancestry for every selected document so the
// destination can rebuild the full folder path, then writes the map.
func (e *Exporter) writeFolders(ctx context.Context, selection Selection, writer archive.Writer) (int, error) {
	export := make(map[string]*document.Folder)
	for kind, docs := range selection {
		needed := false
		for _, doc := range docs {
			if doc.FolderID() != "" {
				needed = true
				break
			}
		}
		if !needed {
			continue
		}
		folders, err := e.instance.Folders.List(ctx, kind)
		if err != nil {
			return 0, services.Wrap(nil, "exporter", "folders", "list "+string(kind)+" folders", err)
		}
		byID := make(map[string]*document.Folder, len(folders))
		for _, folder := range folders {
			byID[folder.ID] = folder
		}
		for _, doc := range docs {
			id := doc.FolderID()
			folder, ok := byID[id]
			if id == "" || !ok {
				continue
			}
			export[folder.ID] = folder
			for _, ancestorID := range document.Ancestry(folder, byID) {
				if ancestor, ok := byID[ancestorID]; ok {
					export[ancestor.ID] = ancestor
				}
			}
		}
	}
	raw, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "exporter", "folders", "encode folder map", err)
	}
	if err := writer.Put(archive.FoldersFile, raw); err != nil {
		return 0, err
	}
	return len(export), nil
}

// bundleAssets downloads every unique bundleable asset exactly once
// using a bounded worker pool. Archive writes are serialized; a failed
// fetch records a warning and never aborts the export.
func (e *Exporter) bundleAssets(ctx context.Context, catalog *assets.Catalog, writer archive.Writer) (int, []AssetWarning) {
	urls := catalog.BundleableURLs()
	if len(urls) == 0 {
		return 0, nil
	}
	workers := e.instance.Config.Download.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	var (
		mu       sync.Mutex
		bundled  int
		warnings []AssetWarning
		written  = make(map[string]bool)
	)
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rawURL := range jobs {
				storagePath := catalog.StoragePathFor(rawURL)
				if storagePath == "" {
					continue
				}

				mu.Lock()
				seen := written[storagePath]
				written[storagePath] = true
				mu.Unlock()
				if seen {
					continue
				}

				data, err := e.fetchAsset(ctx, rawURL, storagePath)
				if err == nil {
					mu.Lock()
					err = writer.Put(archive.AssetPath(storagePath), data)
					if err == nil {
						bundled++
					}
					mu.Unlock()
				}
				if err != nil {
					e.logger.Warn("asset bundling failed",
						slog.String(logging.FieldAsset, rawURL),
						slog.String("error", err.Error()))
					mu.Lock()
					warnings = append(warnings, AssetWarning{URL: rawURL, Reason: err.Error()})
					mu.Unlock()
				}
			}
		}()
	}
	for _, rawURL := range urls {
		jobs <- rawURL
	}
	close(jobs)
	wg.Wait()
	return bundled, warnings
}

func (e *Exporter) fetchAsset(ctx context.Context, rawURL, storagePath string) ([]byte, error) {
	class := assets.Classify(rawURL, e.rules)
	if class.Location == assets.LocationExternal {
		return e.fetcher.Fetch(ctx, assets.AbsoluteURL(rawURL, e.rules))
	}
	return e.instance.Blobs.Get(ctx, storagePath)
}

func (e *Exporter) writeIndexes(catalog *assets.Catalog, related *relations.RelatedData, unrelated *relations.UnrelatedData, writer archive.Writer) error {
	for _, index := range []struct {
		path  string
		value any
	}{
		{archive.AssetsIndexFile, catalog},
		{archive.RelatedDataFile, related},
		{archive.UnrelatedDataFile, unrelated},
	} {
		raw, err := json.MarshalIndent(index.value, "", "  ")
		if err != nil {
			return services.Wrap(services.ErrValidation, "exporter", "indexes", "encode "+index.path, err)
		}
		if err := writer.Put(index.path, raw); err != nil {
			return err
		}
	}
	return nil
}

// writeSummaries emits the auxiliary scene/actor preview indexes. They
// exist only for lazy preview rendering, so failures here are fatal the
// same way any other serialization failure is: the archive is either
// complete or not produced.
func (e *Exporter) writeSummaries(selection Selection, catalog *assets.Catalog, writer archive.Writer) error {
	type summary struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Image  string `json:"img,omitempty"`
		Assets int    `json:"assets"`
	}
	emit := func(kind document.Kind, imageField, path string) error {
		docs := selection[kind]
		if len(docs) == 0 {
			return nil
		}
		summaries := make([]summary, 0, len(docs))
		for _, doc := range docs {
			image, _ := document.StringAt(doc.Data, imageField)
			summaries = append(summaries, summary{
				ID:     doc.ID(),
				Name:   doc.Name(),
				Image:  image,
				Assets: len(catalog.ForDocument(doc.UUID())),
			})
		}
		raw, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return services.Wrap(services.ErrValidation, "exporter", "summaries", "encode "+path, err)
		}
		return writer.Put(path, raw)
	}
	if err := emit(document.KindScene, "background.src", archive.SceneInfoFile); err != nil {
		return err
	}
	return emit(document.KindActor, "img", archive.ActorInfoFile)
}

func totalSelected(selection Selection) int {
	total := 0
	for _, docs := range selection {
		total += len(docs)
	}
	return total
}
