package assets

import (
	"context"
	"errors"
	"testing"

	"scenepack/internal/document"
)

type fakeLister struct {
	files []string
	err   error
}

func (f *fakeLister) List(ctx context.Context, dir string) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.files, nil
}

func refsByField(refs []Reference) map[string][]string {
	out := map[string][]string{}
	for _, ref := range refs {
		out[ref.FieldPath] = append(out[ref.FieldPath], ref.RawURL)
	}
	return out
}

func TestLocateSceneFields(t *testing.T) {
	scene := document.New(document.KindScene, map[string]any{
		"_id":        "s1",
		"name":       "Crossroads",
		"background": map[string]any{"src": "worlds/demo/crossroads.webp"},
		"thumb":      "worlds/demo/thumbs/crossroads.png",
		"tokens": []any{
			map[string]any{"_id": "tok1", "texture": map[string]any{"src": "worlds/demo/tokens/goblin.webp"}},
		},
		"sounds": []any{
			map[string]any{"_id": "snd1", "path": "worlds/demo/audio/wind.ogg"},
		},
	})

	refs := NewLocator(testRules(), nil, nil).Locate(context.Background(), scene)
	byField := refsByField(refs)

	if got := byField["background.src"]; len(got) != 1 || got[0] != "worlds/demo/crossroads.webp" {
		t.Fatalf("missing background ref: %v", byField)
	}
	if got := byField["tokens.tok1.texture.src"]; len(got) != 1 {
		t.Fatalf("missing token ref: %v", byField)
	}
	if got := byField["sounds.snd1.path"]; len(got) != 1 {
		t.Fatalf("missing sound ref: %v", byField)
	}
	for _, ref := range refs {
		if ref.DocumentID != "Scene.s1" {
			t.Fatalf("reference not attributed to scene: %+v", ref)
		}
	}
}

func TestLocateFeedsCatalogByUUID(t *testing.T) {
	scene := document.New(document.KindScene, map[string]any{
		"_id":        "s1",
		"background": map[string]any{"src": "worlds/demo/crossroads.webp"},
	})

	catalog := NewCatalog()
	for _, ref := range NewLocator(testRules(), nil, nil).Locate(context.Background(), scene) {
		catalog.Add(ref, AddOptions{})
	}

	if got := catalog.ForDocument(scene.UUID()); len(got) != 1 {
		t.Fatalf("catalog mapping under %q = %v, want 1 entry", scene.UUID(), got)
	}
	if got := catalog.ForDocument(scene.ID()); len(got) != 0 {
		t.Fatalf("bare _id must not be a catalog key: %v", got)
	}
}

func TestLocateHTMLSources(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id": "j1",
		"pages": []any{
			map[string]any{
				"_id": "p1",
				"text": map[string]any{
					"content": `<p>Look: <img src="worlds/demo/handout.webp"/> and listen
						<audio src="worlds/demo/audio/chant.ogg"></audio></p>`,
				},
			},
		},
	})

	refs := NewLocator(testRules(), nil, nil).Locate(context.Background(), journal)
	urls := map[string]bool{}
	for _, ref := range refs {
		urls[ref.RawURL] = true
	}
	if !urls["worlds/demo/handout.webp"] || !urls["worlds/demo/audio/chant.ogg"] {
		t.Fatalf("html sources not located: %v", urls)
	}
}

func TestLocateDataURITagged(t *testing.T) {
	macro := document.New(document.KindMacro, map[string]any{
		"_id": "m1",
		"img": "data:image/png;base64,AAAA",
	})

	refs := NewLocator(testRules(), nil, nil).Locate(context.Background(), macro)
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
	if refs[0].Location != LocationData || refs[0].Bundleable() {
		t.Fatalf("data URI should be location-less and unbundleable: %+v", refs[0])
	}
}

func TestLocateWildcardExpansion(t *testing.T) {
	scene := document.New(document.KindScene, map[string]any{
		"_id": "s1",
		"tokens": []any{
			map[string]any{"_id": "tok1", "texture": map[string]any{"src": "worlds/demo/tokens/goblin-*.webp"}},
		},
	})
	lister := &fakeLister{files: []string{
		"worlds/demo/tokens/goblin-1.webp",
		"worlds/demo/tokens/goblin-2.webp",
		"worlds/demo/tokens/orc-1.webp",
	}}

	refs := NewLocator(testRules(), lister, nil).Locate(context.Background(), scene)
	if len(refs) != 2 {
		t.Fatalf("expected 2 expanded references, got %d: %+v", len(refs), refs)
	}
	for _, ref := range refs {
		if ref.RawURL == "worlds/demo/tokens/orc-1.webp" {
			t.Fatalf("non-matching file included: %+v", ref)
		}
	}
}

func TestLocateWildcardFallbackOnError(t *testing.T) {
	scene := document.New(document.KindScene, map[string]any{
		"_id": "s1",
		"tokens": []any{
			map[string]any{"_id": "tok1", "texture": map[string]any{"src": "worlds/demo/tokens/goblin-*.webp"}},
		},
	})
	lister := &fakeLister{err: errors.New("listing unavailable")}

	refs := NewLocator(testRules(), lister, nil).Locate(context.Background(), scene)
	if len(refs) != 1 || refs[0].RawURL != "worlds/demo/tokens/goblin-*.webp" {
		t.Fatalf("expected literal fallback, got %+v", refs)
	}
}

func TestLocatePluginBlob(t *testing.T) {
	journal := document.New(document.KindJournalEntry, map[string]any{
		"_id": "j1",
		"flags": map[string]any{
			"quick-encounters": map[string]any{
				"quickEncounter": `{"savedTokens":[{"img":"worlds/demo/tokens/bandit.webp"}]}`,
			},
		},
	})

	refs := NewLocator(testRules(), nil, nil).Locate(context.Background(), journal)
	found := false
	for _, ref := range refs {
		if ref.RawURL == "worlds/demo/tokens/bandit.webp" {
			found = true
		}
	}
	if !found {
		t.Fatalf("plugin blob asset not located: %+v", refs)
	}
}

func TestLocateCardFaces(t *testing.T) {
	deck := document.New(document.KindCards, map[string]any{
		"_id": "d1",
		"cards": []any{
			map[string]any{
				"_id": "c1",
				"faces": []any{
					map[string]any{"img": "worlds/demo/cards/ace.webp"},
				},
			},
		},
	})

	refs := NewLocator(testRules(), nil, nil).Locate(context.Background(), deck)
	found := false
	for _, ref := range refs {
		if ref.RawURL == "worlds/demo/cards/ace.webp" && ref.FieldPath == "cards.c1.faces.0.img" {
			found = true
		}
	}
	if !found {
		t.Fatalf("card face asset not located: %+v", refs)
	}
}
