package importer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"strings"

	"scenepack/internal/archive"
	"scenepack/internal/assets"
	"scenepack/internal/document"
	"scenepack/internal/logging"
	"scenepack/internal/services"
)

// materializer copies bundled assets into the destination blob store
// and rewrites document references to the destination-local paths.
type materializer struct {
	blobs         blobUploader
	rules         assets.Rules
	packageFolder string
	logger        *slog.Logger
}

type blobUploader interface {
	Exists(ctx context.Context, path string) (bool, error)
	Upload(ctx context.Context, path string, data []byte) error
}

// ensure materializes every asset the documents need, then performs a
// textual substitution of each original reference string for its new
// destination path across the documents' full serialized JSON. The
// substitution is deliberately whole-document: it also catches
// references the locator's field tables miss. seen carries storage
// paths already materialized in this run so each asset uploads once.
func (m *materializer) ensure(ctx context.Context, docs []*document.Document, catalog *assets.Catalog, pack *archive.Archive, seen map[string]bool) ([]*document.Document, []AssetWarning) {
	var warnings []AssetWarning
	out := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		replacements := make(map[string]string)
		for _, rawURL := range catalog.ForDocument(doc.UUID()) {
			refs := catalog.References(rawURL)
			if len(refs) == 0 || !refs[0].Bundleable() {
				continue
			}
			storagePath := refs[0].StoragePath
			destPath := m.packageFolder + "/" + storagePath
			if !seen[storagePath] {
				if warning, ok := m.materialize(ctx, pack, rawURL, storagePath, destPath); !ok {
					warnings = append(warnings, warning)
					continue
				}
				seen[storagePath] = true
			}
			replacements[rawURL] = destPath
		}
		rewritten, err := substituteAssets(doc, replacements)
		if err != nil {
			m.logger.Warn("asset rewrite failed",
				slog.String(logging.FieldDocument, doc.UUID()),
				slog.String("error", err.Error()))
			rewritten = doc
		}
		out = append(out, rewritten)
	}
	return out, warnings
}

func (m *materializer) materialize(ctx context.Context, pack *archive.Archive, rawURL, storagePath, destPath string) (AssetWarning, bool) {
	exists, err := m.blobs.Exists(ctx, destPath)
	if err == nil && exists {
		return AssetWarning{}, true
	}
	data, err := pack.Asset(storagePath)
	if err != nil {
		m.logger.Warn("bundled asset missing",
			slog.String(logging.FieldAsset, rawURL),
			slog.String("storage_path", storagePath))
		return AssetWarning{URL: rawURL, Reason: services.Wrap(services.ErrNotFound, "importer", "materialize",
			"archive entry "+storagePath, nil).Error()}, false
	}
	if err := m.blobs.Upload(ctx, destPath, data); err != nil {
		m.logger.Warn("asset upload failed",
			slog.String(logging.FieldAsset, rawURL),
			slog.String("error", err.Error()))
		return AssetWarning{URL: rawURL, Reason: err.Error()}, false
	}
	return AssetWarning{}, true
}

// substituteAssets rewrites every original reference string in the
// document's serialized JSON. Longer originals replace first so one
// reference that is a prefix of another cannot corrupt it.
func substituteAssets(doc *document.Document, replacements map[string]string) (*document.Document, error) {
	if len(replacements) == 0 {
		return doc, nil
	}
	raw, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	originals := make([]string, 0, len(replacements))
	for original := range replacements {
		originals = append(originals, original)
	}
	sort.Slice(originals, func(i, j int) bool {
		if len(originals[i]) != len(originals[j]) {
			return len(originals[i]) > len(originals[j])
		}
		return originals[i] < originals[j]
	})

	text := string(raw)
	for _, original := range originals {
		encodedOld, err := jsonString(original)
		if err != nil {
			return nil, err
		}
		encodedNew, err := jsonString(replacements[original])
		if err != nil {
			return nil, err
		}
		text = strings.ReplaceAll(text, encodedOld, encodedNew)
	}
	return document.FromJSON(doc.Kind, []byte(text))
}

// jsonString renders a string the way it appears inside serialized
// JSON, without the surrounding quotes, so substitution matches the
// escaped form.
func jsonString(value string) (string, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(raw[1 : len(raw)-1]), nil
}
