package relations

import (
	"testing"

	"scenepack/internal/document"
)

func targetSet(rels []Relation) map[string]bool {
	out := map[string]bool{}
	for _, rel := range rels {
		out[rel.UUID] = true
	}
	return out
}

func TestExtractBracketTags(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id": "j1",
		"content": `See @JournalEntry[xyz789]{The Keep} and the packed
			@Compendium[mymod.journals.abc123]{Old Lore} for details.`,
	})

	rels := NewExtractor(nil).Extract(journal)
	targets := targetSet(rels)
	if !targets["JournalEntry.xyz789"] {
		t.Fatalf("local tag not extracted: %v", targets)
	}
	if !targets["Compendium.mymod.journals.abc123"] {
		t.Fatalf("compendium tag not extracted: %v", targets)
	}
}

func TestExtractBracketTagWithAnchor(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id":     "j1",
		"content": `Jump to @JournalEntry[xyz789#chapter-2]{Chapter Two}.`,
	})

	rels := NewExtractor(nil).Extract(journal)
	if !targetSet(rels)["JournalEntry.xyz789"] {
		t.Fatalf("anchored tag not extracted: %v", rels)
	}
}

func TestExtractAnchors(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id": "j1",
		"pages": []any{
			map[string]any{
				"_id": "p1",
				"text": map[string]any{
					"content": `<p><a class="entity-link" data-entity="Actor" data-id="hero01">The Hero</a>
						and <a data-pack="mymod.actors" data-id="villain02">The Villain</a></p>`,
				},
			},
		},
	})

	rels := NewExtractor(nil).Extract(journal)
	targets := targetSet(rels)
	if !targets["Actor.hero01"] {
		t.Fatalf("entity anchor not extracted: %v", targets)
	}
	if !targets["Compendium.mymod.actors.villain02"] {
		t.Fatalf("pack anchor not extracted: %v", targets)
	}
	for _, rel := range rels {
		if rel.EmbeddedID != "p1" || rel.EmbeddedPath != "pages" {
			t.Fatalf("embedded attribution missing: %+v", rel)
		}
	}
}

func TestExtractMalformedDropped(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id": "j1",
		"content": `@NotAKind[abc]{Bad} @Compendium[two.segments]{Short}
			<a data-id="orphan">no kind</a> @Actor[]{empty}`,
	})

	rels := NewExtractor(nil).Extract(journal)
	if len(rels) != 0 {
		t.Fatalf("malformed references should be dropped silently: %+v", rels)
	}
}

func TestExtractSceneStructuredRefs(t *testing.T) {
	scene := document.New(document.KindScene, map[string]any{
		"_id":      "s1",
		"playlist": "pl1",
		"notes": []any{
			map[string]any{"_id": "n1", "entryId": "j1"},
		},
		"tokens": []any{
			map[string]any{"_id": "tok1", "actorId": "a1"},
		},
	})

	rels := NewExtractor(nil).Extract(scene)
	targets := targetSet(rels)
	for _, want := range []string{"Playlist.pl1", "JournalEntry.j1", "Actor.a1"} {
		if !targets[want] {
			t.Fatalf("missing structured relation %q: %v", want, targets)
		}
	}
	for _, rel := range rels {
		if rel.Path == "notes.entryId" && rel.EmbeddedID != "n1" {
			t.Fatalf("note relation missing embedded id: %+v", rel)
		}
	}
}

func TestExtractTableResults(t *testing.T) {
	table := document.New(document.KindRollTable, map[string]any{
		"_id": "t1",
		"results": []any{
			map[string]any{"_id": "r1", "documentCollection": "Actor", "documentId": "a1"},
			map[string]any{"_id": "r2", "documentCollection": "mymod.actors", "documentId": "a2"},
			map[string]any{"_id": "r3", "description": "plain text row"},
		},
	})

	rels := NewExtractor(nil).Extract(table)
	targets := targetSet(rels)
	if !targets["Actor.a1"] {
		t.Fatalf("document result not extracted: %v", targets)
	}
	if !targets["Compendium.mymod.actors.a2"] {
		t.Fatalf("compendium result not extracted: %v", targets)
	}
	if len(rels) != 2 {
		t.Fatalf("text-only rows should yield nothing: %+v", rels)
	}
}

func TestExtractTileActions(t *testing.T) {
	scene := document.New(document.KindScene, map[string]any{
		"_id": "s1",
		"tiles": []any{
			map[string]any{
				"_id": "tile1",
				"flags": map[string]any{
					"monks-active-tiles": map[string]any{
						"actions": []any{
							map[string]any{
								"id": "act1",
								"data": map[string]any{
									"entity": map[string]any{"id": "Scene.s2"},
								},
							},
							map[string]any{
								"id": "act2",
								"data": map[string]any{
									"entity": map[string]any{"id": "Compendium.mymod.macros.m1"},
								},
							},
						},
					},
				},
			},
		},
	})

	rels := NewExtractor(nil).Extract(scene)
	targets := targetSet(rels)
	if !targets["Scene.s2"] || !targets["Compendium.mymod.macros.m1"] {
		t.Fatalf("tile actions not extracted: %v", targets)
	}
}

func TestExtractDeduplicates(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id":     "j1",
		"content": `@Actor[a1]{Once} and @Actor[a1]{Twice}`,
	})

	rels := NewExtractor(nil).Extract(journal)
	if len(rels) != 1 {
		t.Fatalf("duplicate relations should collapse: %+v", rels)
	}
}
