package document

import "testing"

func TestParseRefLocal(t *testing.T) {
	ref, ok := ParseRef("JournalEntry.xyz789")
	if !ok {
		t.Fatal("expected valid ref")
	}
	if ref.Kind != KindJournalEntry || ref.ID != "xyz789" || ref.IsCompendium() {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.String() != "JournalEntry.xyz789" {
		t.Fatalf("unexpected render: %q", ref.String())
	}
}

func TestParseRefCompendium(t *testing.T) {
	ref, ok := ParseRef("Compendium.mymod.scenes.abc123")
	if !ok {
		t.Fatal("expected valid ref")
	}
	if !ref.IsCompendium() || ref.Namespace != "mymod" || ref.Pack != "scenes" || ref.ID != "abc123" {
		t.Fatalf("unexpected ref: %+v", ref)
	}
	if ref.Coordinate() != "mymod.scenes.abc123" {
		t.Fatalf("unexpected coordinate: %q", ref.Coordinate())
	}
}

func TestParseRefAnchor(t *testing.T) {
	ref, ok := ParseRef("JournalEntry.xyz789#chapter-2")
	if !ok || ref.Anchor != "chapter-2" || ref.ID != "xyz789" {
		t.Fatalf("unexpected ref: %+v ok=%v", ref, ok)
	}
}

func TestParseRefMalformed(t *testing.T) {
	for _, raw := range []string{
		"",
		"JournalEntry",
		"NotAKind.abc",
		"Compendium.only.two",
		"Compendium..pack.id",
		"Scene.",
	} {
		if _, ok := ParseRef(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestParseTagTarget(t *testing.T) {
	ref, ok := ParseTagTarget("Actor", "hero01")
	if !ok || ref.Kind != KindActor || ref.ID != "hero01" {
		t.Fatalf("unexpected: %+v ok=%v", ref, ok)
	}

	ref, ok = ParseTagTarget("Compendium", "mymod.journals.j1")
	if !ok || !ref.IsCompendium() || ref.ID != "j1" {
		t.Fatalf("unexpected: %+v ok=%v", ref, ok)
	}

	if _, ok := ParseTagTarget("Actor", "has.dots"); ok {
		t.Fatal("dotted local target should be rejected")
	}
	if _, ok := ParseTagTarget("Compendium", "missing.segment"); ok {
		t.Fatal("short compendium coordinate should be rejected")
	}
}

func TestSourceIdentityStamping(t *testing.T) {
	doc := testScene()
	doc.StampExport("demo-pack", "1.0.0", "deadbeef")
	if doc.SourceUUID() != "Scene.abc123" {
		t.Fatalf("unexpected source uuid: %q", doc.SourceUUID())
	}
	if doc.StampedHash() != "deadbeef" {
		t.Fatalf("unexpected hash: %q", doc.StampedHash())
	}
	if doc.PackageName() != "demo-pack" {
		t.Fatalf("unexpected package: %q", doc.PackageName())
	}

	// Re-stamping keeps the original coordinate.
	doc.SetID("newlocal")
	doc.StampExport("other-pack", "2.0.0", "cafe")
	if doc.SourceUUID() != "Scene.abc123" {
		t.Fatalf("re-export overwrote source identity: %q", doc.SourceUUID())
	}
}

func TestSourceIdentityFromPack(t *testing.T) {
	doc := New(KindJournalEntry, map[string]any{
		"_id":  "j1",
		"name": "Lore",
		"pack": "mymod.journals",
	})
	doc.StampExport("demo-pack", "1.0.0", "")
	if doc.SourceUUID() != "Compendium.mymod.journals.j1" {
		t.Fatalf("unexpected source uuid: %q", doc.SourceUUID())
	}
}
