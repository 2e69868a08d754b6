package assets

// Reference records one media reference found in a document field. Many
// references may share one StoragePath; that shared path is what makes
// deduplication correct.
type Reference struct {
	// RawURL is the reference exactly as it appears in the document.
	RawURL string `json:"raw"`
	// AbsoluteURL is the fetchable form of RawURL.
	AbsoluteURL string `json:"absolute"`
	// StoragePath is the canonical origin-stripped path the asset travels
	// under. Empty for data: URIs.
	StoragePath string `json:"storagePath"`
	// DocumentID is the UUID of the document holding the reference.
	DocumentID string `json:"documentId"`
	// ParentID is the UUID of the owning document when the reference lives
	// in an embedded child record; empty otherwise.
	ParentID string `json:"parentId,omitempty"`
	// FieldPath is where in the field tree the reference was found.
	FieldPath string `json:"path"`
	// Location tags where the asset lives (core, world, external, ...).
	Location Location `json:"location"`
	// HasDependency reports whether the document needs this asset bundled.
	HasDependency bool `json:"hasDependency"`
}

// IsCore reports whether the asset ships with the core runtime.
func (r Reference) IsCore() bool { return r.Location == LocationCore }

// IsSystem reports whether the asset ships with a game-system pack.
func (r Reference) IsSystem() bool { return r.Location == LocationSystem }

// Bundleable reports whether the asset should travel inside an archive:
// it must carry a dependency verdict, have a storage path, and not be an
// inline data: URI.
func (r Reference) Bundleable() bool {
	return r.HasDependency && r.StoragePath != "" && r.Location != LocationData
}
