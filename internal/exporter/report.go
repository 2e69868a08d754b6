package exporter

import (
	"scenepack/internal/archive"
	"scenepack/internal/document"
)

// AssetWarning records an asset that could not be bundled. The archive
// is still produced; the importer surfaces the gap later.
type AssetWarning struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Report summarizes one export run.
type Report struct {
	PackageName   string                `json:"package"`
	Manifest      *archive.Manifest     `json:"manifest"`
	Created       map[document.Kind]int `json:"documents"`
	Folders       int                   `json:"folders"`
	Assets        int                   `json:"assets"`
	AssetWarnings []AssetWarning        `json:"asset_warnings,omitempty"`
}

// TotalDocuments returns the number of serialized documents.
func (r *Report) TotalDocuments() int {
	total := 0
	for _, count := range r.Created {
		total += count
	}
	return total
}
