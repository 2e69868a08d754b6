package document

import "testing"

func TestContentHashStable(t *testing.T) {
	first, err := ContentHash(testScene())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := ContentHash(testScene())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first != second {
		t.Fatalf("hash not stable: %q vs %q", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected sha256 hex digest, got %q", first)
	}
}

func TestContentHashIgnoresIdentityAndOwnHash(t *testing.T) {
	base := testScene()
	baseline, err := ContentHash(base)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	renamed := testScene()
	renamed.SetID("different-id")
	SetPath(renamed.Data, "flags.scenepack.hash", "previously-stamped")

	got, err := ContentHash(renamed)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got != baseline {
		t.Fatal("hash should not depend on _id or a prior stamped hash")
	}
}

func TestContentHashSeesFieldChanges(t *testing.T) {
	base := testScene()
	baseline, _ := ContentHash(base)

	changed := testScene()
	SetPath(changed.Data, "background.src", "worlds/demo/other.webp")
	got, _ := ContentHash(changed)

	if got == baseline {
		t.Fatal("hash should change when content changes")
	}
}

func TestFolderLegacyParentNormalization(t *testing.T) {
	folder, err := FolderFromJSON([]byte(`{"_id":"f2","name":"Maps","type":"Scene","parentFolder":"f1"}`))
	if err != nil {
		t.Fatalf("parse folder: %v", err)
	}
	if folder.Parent != "f1" {
		t.Fatalf("legacy parent not normalized: %+v", folder)
	}

	folder, err = FolderFromJSON([]byte(`{"_id":"f3","name":"Maps","type":"Scene","parent":"f1","parentFolder":"stale"}`))
	if err != nil {
		t.Fatalf("parse folder: %v", err)
	}
	if folder.Parent != "f1" {
		t.Fatalf("canonical parent should win: %+v", folder)
	}
}

func TestAncestryStopsOnCycle(t *testing.T) {
	f1 := &Folder{ID: "f1", Parent: "f2"}
	f2 := &Folder{ID: "f2", Parent: "f1"}
	byID := map[string]*Folder{"f1": f1, "f2": f2}
	chain := Ancestry(f1, byID)
	if len(chain) != 1 || chain[0] != "f2" {
		t.Fatalf("unexpected chain: %v", chain)
	}
}
