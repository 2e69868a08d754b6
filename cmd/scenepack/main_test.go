package main

import (
	"path/filepath"
	"testing"

	"scenepack/internal/document"
	"scenepack/internal/testsupport"
)

func seedHauntedKeep(t *testing.T, env *cliTestEnv) {
	t.Helper()
	env.seedDocuments(t, map[document.Kind][]*document.Document{
		document.KindScene: {
			testsupport.SceneWithNote("sc1", "worlds/demo/map.webp", "j1"),
		},
		document.KindJournalEntry: {
			testsupport.Journal("j1", "Keep History", "<p>The keep fell long ago.</p>"),
		},
	})
	env.seedBlob(t, "worlds/demo/map.webp", []byte("webp-bytes"))
}

func TestExportImportRoundTrip(t *testing.T) {
	source := setupCLITestEnv(t, "haunted-keep")
	seedHauntedKeep(t, source)

	archiveDir := filepath.Join(t.TempDir(), "haunted-keep")
	out, _, err := runCLI(t, []string{"export", "--output", archiveDir}, source.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "Exported haunted-keep")
	requireContains(t, out, "Scene")
	requireContains(t, out, "JournalEntry")

	dest := setupCLITestEnv(t, "haunted-keep")
	out, _, err = runCLI(t, []string{"import", archiveDir}, dest.configPath)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	requireContains(t, out, "Imported Haunted Keep")
	requireContains(t, out, "Scene")

	out, _, err = runCLI(t, []string{"status"}, dest.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Package: haunted-keep")
	requireContains(t, out, "Scene")
	requireContains(t, out, "Total")
}

func TestExportKindFilter(t *testing.T) {
	source := setupCLITestEnv(t, "haunted-keep")
	seedHauntedKeep(t, source)

	archiveDir := filepath.Join(t.TempDir(), "journals-only")
	out, _, err := runCLI(t, []string{"export", "--output", archiveDir, "--kind", "JournalEntry"}, source.configPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	requireContains(t, out, "JournalEntry")

	inspectOut, _, err := runCLI(t, []string{"inspect", archiveDir}, "")
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	requireContains(t, inspectOut, "Haunted Keep")
	requireContains(t, inspectOut, "JournalEntry")
}

func TestExportRejectsUnknownKind(t *testing.T) {
	source := setupCLITestEnv(t, "haunted-keep")
	seedHauntedKeep(t, source)

	_, _, err := runCLI(t, []string{"export", "--kind", "Gizmo"}, source.configPath)
	if err == nil {
		t.Fatal("expected unknown kind to fail")
	}
	requireContains(t, err.Error(), "unknown document kind")
}

func TestExportEmptyStoreFails(t *testing.T) {
	source := setupCLITestEnv(t, "empty-pack")

	_, _, err := runCLI(t, []string{"export"}, source.configPath)
	if err == nil {
		t.Fatal("expected empty export to fail")
	}
	requireContains(t, err.Error(), "nothing to export")
}

func TestInspectMissingArchiveFails(t *testing.T) {
	_, _, err := runCLI(t, []string{"inspect", filepath.Join(t.TempDir(), "absent")}, "")
	if err == nil {
		t.Fatal("expected inspect of missing archive to fail")
	}
}
