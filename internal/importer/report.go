package importer

import "scenepack/internal/document"

// AssetWarning records an asset that could not be materialized. The
// referencing document is still created with its original reference.
type AssetWarning struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// Report summarizes one import run.
type Report struct {
	PackageName    string                `json:"package"`
	Created        map[document.Kind]int `json:"created"`
	Skipped        map[document.Kind]int `json:"skipped"`
	Folders        int                   `json:"folders"`
	Assets         int                   `json:"assets"`
	Resolved       int                   `json:"resolved"`
	AssetWarnings  []AssetWarning        `json:"asset_warnings,omitempty"`
	WelcomeJournal string                `json:"welcome_journal,omitempty"`
}

// TotalCreated returns the number of documents created across kinds.
func (r *Report) TotalCreated() int {
	total := 0
	for _, count := range r.Created {
		total += count
	}
	return total
}

// TotalSkipped returns the number of identity-skipped documents.
func (r *Report) TotalSkipped() int {
	total := 0
	for _, count := range r.Skipped {
		total += count
	}
	return total
}
