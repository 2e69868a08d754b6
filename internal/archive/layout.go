package archive

import "scenepack/internal/document"

// Fixed archive layout. Every path is relative to the archive root.
const (
	// MarkerFile is the empty file signaling archive format/origin.
	MarkerFile = "scene-packer.info"

	DataDir           = "data"
	FoldersFile       = "data/folders.json"
	AssetsIndexFile   = "data/assets.json"
	RelatedDataFile   = "data/related-data.json"
	UnrelatedDataFile = "data/unrelated-data.json"
	AssetsDir         = "data/assets"
	SceneInfoFile     = "data/scenes/info.json"
	SceneThumbsDir    = "data/scenes/thumbs"
	ActorInfoFile     = "data/actors/info.json"
)

// ManifestPath returns the manifest location for a package slug.
func ManifestPath(packageSlug string) string {
	return packageSlug + ".json"
}

// DocumentsPath returns the per-kind document array location.
func DocumentsPath(kind document.Kind) string {
	return DataDir + "/" + string(kind) + ".json"
}

// AssetPath returns the bundled location for an asset storage path.
func AssetPath(storagePath string) string {
	return AssetsDir + "/" + storagePath
}

// SceneThumbPath returns the preview thumbnail location for a scene.
func SceneThumbPath(sceneID string) string {
	return SceneThumbsDir + "/" + sceneID + ".png"
}
