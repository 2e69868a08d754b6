package archive

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"scenepack/internal/document"
	"scenepack/internal/services"
)

// FormatVersion identifies the archive layout written by this build.
const FormatVersion = "1.0.0"

// Manifest describes an exported package. It is written to
// <packageSlug>.json at the archive root.
type Manifest struct {
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Version        string    `json:"version"`
	Description    string    `json:"description,omitempty"`
	FormatVersion  string    `json:"format_version"`
	MinimumVersion string    `json:"minimum_version,omitempty"`
	WelcomeJournal string    `json:"welcome_journal,omitempty"`
	CreatedAt      time.Time `json:"created_at"`

	// Discovery taxonomy and play recommendations, straight from the
	// package config. Advisory; importers never act on them.
	Tags    []string `json:"tags,omitempty"`
	Themes  []string `json:"themes,omitempty"`
	Players []int    `json:"players,omitempty"`
	Levels  []int    `json:"levels,omitempty"`

	// Counts records how many documents of each kind the archive holds.
	Counts map[document.Kind]int `json:"counts"`
}

// MarshalIndent renders the manifest for writing into an archive.
func (m *Manifest) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func parseManifest(raw []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, services.Wrap(services.ErrValidation, "archive", "parse_manifest", "decode manifest", err)
	}
	if m.Name == "" {
		return nil, services.Wrap(services.ErrValidation, "archive", "parse_manifest", "manifest missing package name", nil)
	}
	return &m, nil
}

// CheckMinimumVersion fails when the manifest demands a newer importer
// than current. An empty requirement always passes.
func (m *Manifest) CheckMinimumVersion(current string) error {
	if m.MinimumVersion == "" {
		return nil
	}
	older, err := versionLess(current, m.MinimumVersion)
	if err != nil {
		return services.Wrap(services.ErrValidation, "archive", "check_version", "parse minimum_version", err)
	}
	if older {
		return services.Wrap(services.ErrVersion, "archive", "check_version",
			fmt.Sprintf("archive requires version %s or newer, running %s", m.MinimumVersion, current), nil)
	}
	return nil
}

// versionLess reports whether a sorts before b as dotted numeric versions.
func versionLess(a, b string) (bool, error) {
	as, err := versionParts(a)
	if err != nil {
		return false, err
	}
	bs, err := versionParts(b)
	if err != nil {
		return false, err
	}
	for len(as) < len(bs) {
		as = append(as, 0)
	}
	for len(bs) < len(as) {
		bs = append(bs, 0)
	}
	for i := range as {
		if as[i] != bs[i] {
			return as[i] < bs[i], nil
		}
	}
	return false, nil
}

func versionParts(v string) ([]int, error) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return nil, fmt.Errorf("empty version")
	}
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("version component %q: %w", f, err)
		}
		parts = append(parts, n)
	}
	return parts, nil
}
