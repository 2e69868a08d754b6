package resolver

import (
	"strings"
	"testing"

	"scenepack/internal/document"
	"scenepack/internal/relations"
	"scenepack/internal/testsupport"
)

func newResolver(t *testing.T) *Resolver {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	reg, _ := testsupport.NewInstance(t, cfg)
	res, err := New(reg, cfg.Package.Name)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return res
}

// importedJournal builds a created-by-import document whose source
// identity is the given compendium coordinate.
func importedJournal(id, name, coordinate string) *document.Document {
	doc := testsupport.Journal(id, name, "<p>body</p>")
	document.SetPath(doc.Data, "flags.scenepack.sourceUUID", coordinate)
	return doc
}

func TestResolveBracketTag(t *testing.T) {
	res := newResolver(t)

	target := importedJournal("newId", "Lore", "Compendium.mod.pack.oldId")
	created := testsupport.Journal("j1", "Linker",
		`<p>See @Compendium[mod.pack.oldId]{Lore} for details.</p>`)

	updates := res.Resolve(document.KindJournalEntry,
		[]*document.Document{created},
		[]*document.Document{created, target})
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}

	pages, _ := document.SliceAt(created.Data, "pages")
	content, _ := document.StringAt(pages[0].(map[string]any), "text.content")
	if !strings.Contains(content, "@JournalEntry[newId]{Lore}") {
		t.Fatalf("content = %q", content)
	}
	if strings.Contains(content, "Compendium.") || strings.Contains(content, "@Compendium[") {
		t.Fatalf("old coordinate survives: %q", content)
	}

	// Round trip: re-extraction finds exactly one local relation.
	rels := relations.NewExtractor(nil).Extract(created)
	if len(rels) != 1 || rels[0].UUID != "JournalEntry.newId" {
		t.Fatalf("re-extracted relations = %+v", rels)
	}
}

func TestResolveKeepsAnchor(t *testing.T) {
	res := newResolver(t)

	target := importedJournal("newId", "Lore", "Compendium.mod.pack.oldId")
	created := testsupport.Journal("j1", "Linker",
		`@Compendium[mod.pack.oldId#chapter-two]{Chapter Two}`)

	updates := res.Resolve(document.KindJournalEntry,
		[]*document.Document{created},
		[]*document.Document{created, target})
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	pages, _ := document.SliceAt(created.Data, "pages")
	content, _ := document.StringAt(pages[0].(map[string]any), "text.content")
	if !strings.Contains(content, "@JournalEntry[newId#chapter-two]{Chapter Two}") {
		t.Fatalf("content = %q", content)
	}
}

func TestResolveAnchorAttributes(t *testing.T) {
	res := newResolver(t)

	target := importedJournal("newId", "Lore", "Compendium.mod.pack.oldId")
	created := testsupport.Journal("j1", "Linker",
		`<a class="entity-link" data-pack="mod.pack" data-id="oldId">Lore</a>`)

	updates := res.Resolve(document.KindJournalEntry,
		[]*document.Document{created},
		[]*document.Document{created, target})
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	pages, _ := document.SliceAt(created.Data, "pages")
	content, _ := document.StringAt(pages[0].(map[string]any), "text.content")
	if !strings.Contains(content, `data-entity="JournalEntry" data-id="newId"`) {
		t.Fatalf("content = %q", content)
	}
}

func TestResolveAnchorAnyAttributeShape(t *testing.T) {
	res := newResolver(t)

	cases := map[string]string{
		"reversed order":   `<a data-id="oldId" class="entity-link" data-pack="mod.pack">Lore</a>`,
		"attrs in between": `<a data-pack="mod.pack" draggable="true" data-id="oldId">Lore</a>`,
		"single quotes":    `<a data-pack='mod.pack' data-id='oldId'>Lore</a>`,
	}
	for label, fragment := range cases {
		target := importedJournal("newId", "Lore", "Compendium.mod.pack.oldId")
		created := testsupport.Journal("j1", "Linker", fragment)

		updates := res.Resolve(document.KindJournalEntry,
			[]*document.Document{created},
			[]*document.Document{created, target})
		if len(updates) != 1 {
			t.Fatalf("%s: updates = %d, want 1", label, len(updates))
		}
		pages, _ := document.SliceAt(created.Data, "pages")
		content, _ := document.StringAt(pages[0].(map[string]any), "text.content")
		if !strings.Contains(content, `data-entity="JournalEntry"`) || !strings.Contains(content, `data-id="newId"`) {
			t.Fatalf("%s: content = %q", label, content)
		}
		if strings.Contains(content, "data-pack") {
			t.Fatalf("%s: stale pack attribute: %q", label, content)
		}
	}
}

func TestResolveAnchorLeavesOtherAnchorsAlone(t *testing.T) {
	res := newResolver(t)

	target := importedJournal("newId", "Lore", "Compendium.mod.pack.oldId")
	created := testsupport.Journal("j1", "Linker",
		`<a data-pack="mod.pack" data-id="oldId">Lore</a>`+
			`<a data-pack="other.pack" data-id="elsewhere">Elsewhere</a>`)

	updates := res.Resolve(document.KindJournalEntry,
		[]*document.Document{created},
		[]*document.Document{created, target})
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	pages, _ := document.SliceAt(created.Data, "pages")
	content, _ := document.StringAt(pages[0].(map[string]any), "text.content")
	if !strings.Contains(content, `data-pack="other.pack" data-id="elsewhere"`) {
		t.Fatalf("unrelated anchor changed: %q", content)
	}
}

func TestResolveIdempotent(t *testing.T) {
	res := newResolver(t)

	target := importedJournal("newId", "Lore", "Compendium.mod.pack.oldId")
	created := testsupport.Journal("j1", "Linker",
		`@Compendium[mod.pack.oldId]{Lore}`)
	batch := []*document.Document{created}
	available := []*document.Document{created, target}

	if updates := res.Resolve(document.KindJournalEntry, batch, available); len(updates) != 1 {
		t.Fatalf("first pass updates = %d, want 1", len(updates))
	}
	if updates := res.Resolve(document.KindJournalEntry, batch, available); len(updates) != 0 {
		t.Fatalf("second pass updates = %d, want 0", len(updates))
	}
}

func TestResolveNeverGuessesAmbiguous(t *testing.T) {
	res := newResolver(t)

	a := importedJournal("a", "Lore", "Compendium.mod.pack.oldId")
	b := importedJournal("b", "Lore Copy", "Compendium.mod.pack.oldId")
	created := testsupport.Journal("j1", "Linker",
		`@Compendium[mod.pack.oldId]{Lore}`)

	updates := res.Resolve(document.KindJournalEntry,
		[]*document.Document{created},
		[]*document.Document{created, a, b})
	if len(updates) != 0 {
		t.Fatalf("ambiguous match must not rewrite, got %d updates", len(updates))
	}
	pages, _ := document.SliceAt(created.Data, "pages")
	content, _ := document.StringAt(pages[0].(map[string]any), "text.content")
	if !strings.Contains(content, "@Compendium[mod.pack.oldId]") {
		t.Fatalf("old coordinate should survive: %q", content)
	}
}

func TestResolveZeroMatchesLeavesUnresolved(t *testing.T) {
	res := newResolver(t)

	created := testsupport.Journal("j1", "Linker",
		`@Compendium[mod.pack.ghost]{Gone}`)

	updates := res.Resolve(document.KindJournalEntry,
		[]*document.Document{created},
		[]*document.Document{created})
	if len(updates) != 0 {
		t.Fatalf("unmatched coordinate must not rewrite, got %d", len(updates))
	}
}

func TestResolveTableResultStructural(t *testing.T) {
	res := newResolver(t)

	target := testsupport.Actor("newActor", "Guard", "")
	document.SetPath(target.Data, "flags.scenepack.sourceUUID", "Compendium.mod.actors.oldActor")

	table := document.New(document.KindRollTable, map[string]any{
		"_id":  "t1",
		"name": "Encounters",
		"results": []any{
			map[string]any{
				"_id":                "r1",
				"documentCollection": "mod.actors",
				"documentId":         "oldActor",
			},
			map[string]any{
				"_id":  "r2",
				"text": "Nothing happens",
			},
		},
	})

	updates := res.Resolve(document.KindRollTable,
		[]*document.Document{table},
		[]*document.Document{table, target})
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}

	results, _ := document.SliceAt(table.Data, "results")
	row := results[0].(map[string]any)
	if row["documentCollection"] != "Actor" || row["documentId"] != "newActor" {
		t.Fatalf("row = %+v", row)
	}
}

func TestResolveTileActionStructural(t *testing.T) {
	res := newResolver(t)

	target := testsupport.SceneWithNote("newScene", "", "")
	document.SetPath(target.Data, "flags.scenepack.sourceUUID", "Compendium.mod.scenes.oldScene")

	scene := document.New(document.KindScene, map[string]any{
		"_id":  "s1",
		"name": "Hub",
		"tiles": []any{
			map[string]any{
				"_id": "tile1",
				"flags": map[string]any{
					"monks-active-tiles": map[string]any{
						"actions": []any{
							map[string]any{
								"data": map[string]any{
									"entity": map[string]any{
										"id": "Compendium.mod.scenes.oldScene",
									},
								},
							},
						},
					},
				},
			},
		},
	})

	updates := res.Resolve(document.KindScene,
		[]*document.Document{scene},
		[]*document.Document{scene, target})
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}

	tiles, _ := document.SliceAt(scene.Data, "tiles")
	tile := tiles[0].(map[string]any)
	actions, _ := document.SliceAt(tile, "flags.monks-active-tiles.actions")
	action := actions[0].(map[string]any)
	got, _ := document.StringAt(action, "data.entity.id")
	if got != "Scene.newScene" {
		t.Fatalf("entity id = %q, want Scene.newScene", got)
	}
}
